// Package plugin defines how device drivers plug into llad.
//
// A Plugin is started with an Adaptor through which it registers devices
// and posts work onto the daemon's control loop. Plugins are created by a
// Loader from the factories registered with it, filtered by the enabled
// list in the configuration.
package plugin
