// Package daemon implements llad, the lighting daemon.
//
// A Daemon owns all devices, ports and universes. Their state is only
// touched from the daemon's control loop: Init and the shutdown at the end
// of Run execute before and after the loop, and everything else is posted
// onto it. Plugins post background work with Adaptor.Execute, and other
// goroutines call the exported methods, which wait for the loop to run them.
//
// Typical use:
//
//	d, err := daemon.New(cfg, daemon.WithLogger(logger))
//	if err != nil { ... }
//	if err := d.Init(ctx); err != nil { ... }
//	go console(d)
//	err = d.Run(ctx) // returns after Terminate or ctx cancellation
package daemon
