// Package dmx provides the fixed-capacity frame buffer carried between
// ports and universes.
//
// A frame holds up to 512 channel values. The buffer tracks how many
// channels are in use; reads beyond that size return zero.
package dmx
