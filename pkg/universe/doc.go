// Package universe implements universes, the distribution points ports
// are bound to, and the Store that owns them.
//
// A universe keeps the latest frame reported by any of its readable ports
// and writes it to every other writable port. It does not merge frames from
// several inputs: the most recent change wins.
//
// Universe ID 0 is reserved to mean "no universe".
//
// Universes are not safe for concurrent use; they are driven from the
// daemon's control loop.
package universe
