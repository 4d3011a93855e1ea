// Package cache provides named key/value caches backed by Badger.
//
// A cache is installed in the service container in on-demand mode and
// opened the first time something requires it: a stateful session lookup or
// a management read of one of its runtime metrics. Its statistics are
// exposed under /subsystem=cache/cache=<name>.
package cache
