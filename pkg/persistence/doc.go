// Package persistence stores the daemon state that must survive restarts:
// which universe each port is bound to, keyed by the port's unique ID, and
// the names given to universes.
//
// FileStore writes a single JSON document. BadgerStore keeps one key per
// binding in an embedded badger database.
package persistence
