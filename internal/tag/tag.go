// Package tag holds a single debug gate shared across the event queue
// core, so precondition assertions can be compiled into hot paths without
// paying their cost in a release build.
package tag

// Debug enables precondition assertions (cursor monotonicity, double-close
// detection, read-completion counter bounds) throughout the event queue
// core. It defaults to false. Tests that want assertions active should
// flip it in a TestMain or package init, e.g.:
//
//	func init() { tag.Debug = true }
var Debug = false
