// Package patch binds ports to universes.
//
// The Manager keeps universe membership and the port's own universe
// reference consistent, remembers each binding by the port's unique ID and
// persists those bindings so a port that reappears, after a restart or a
// device reconnect, is patched to the same universe again.
//
// A Manager is not safe for concurrent use. The daemon calls it only from
// its control loop.
package patch
