//go:build !jack
// +build !jack

package fretmidi

import "fmt"

// JACKTransport is a stub for builds without JACK support. Construct one
// with NewJACKTransport to get a descriptive error rather than a link
// failure against a missing libjack.
type JACKTransport struct{}

// NewJACKTransport always fails in a build without the "jack" tag.
func NewJACKTransport(clientName string, decoder *Decoder) (*JACKTransport, error) {
	return nil, fmt.Errorf("JACK support not compiled in: rebuild with -tags jack")
}

func (t *JACKTransport) PutByte(b byte) {}
func (t *JACKTransport) Flush()         {}
func (t *JACKTransport) Close() error   { return fmt.Errorf("JACK support not compiled in") }
