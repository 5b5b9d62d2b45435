// Command llad is the lighting daemon.
//
// It loads the configured plugins, restores the saved port bindings and
// moves DMX frames between the ports patched to each universe.
//
// Usage:
//
//	llad [flags]
//	llad events [flags] <events.cbor>
//
// Examples:
//
//	# Run with a configuration file and the interactive console
//	llad --config /etc/llad/llad.yaml --interactive
//
//	# Keep bindings in a badger database
//	llad --state /var/lib/llad --state-backend badger
//
//	# Show the binding changes recorded in an event log
//	llad events --category binding /var/log/llad/events.cbor
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
