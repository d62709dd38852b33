package fretmidi

import (
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"
	"gitlab.com/gomidi/midi/v2"
)

var gomidiTransportDebug = debuggo.Debug("fretmidi:gomiditransport")

// GoMIDITransport is a portable, cross-platform MIDI transport built on
// gitlab.com/gomidi/midi/v2. Unlike JACKTransport it needs no JACK server:
// gomidi/v2 talks to whatever native backend a driver package registers
// (CoreMIDI, WinMM, ALSA). A caller must blank-import one such driver
// package once, at program start, before constructing a GoMIDITransport;
// this package stays driver-agnostic and only depends on the gomidi/v2
// core.
type GoMIDITransport struct {
	send func(midi.Message) error
	stop func()

	pending []byte
	decoder *Decoder
}

// NewGoMIDITransport opens the named output and input ports (matched by
// substring against the names the active driver reports) and wires
// decoder to receive bytes arriving on the input port.
func NewGoMIDITransport(outName, inName string, decoder *Decoder) (*GoMIDITransport, error) {
	out, err := midi.FindOutPort(outName)
	if err != nil {
		return nil, fmt.Errorf("failed to find MIDI output port %q: %w", outName, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open MIDI output port %q: %w", outName, err)
	}

	t := &GoMIDITransport{send: send, decoder: decoder}

	in, err := midi.FindInPort(inName)
	if err != nil {
		return nil, fmt.Errorf("failed to find MIDI input port %q: %w", inName, err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		for _, b := range msg {
			t.decoder.PutByte(b)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to listen on MIDI input port %q: %w", inName, err)
	}
	t.stop = stop

	gomidiTransportDebug("gomidi transport wired out=%q in=%q", outName, inName)
	return t, nil
}

// PutByte implements Callbacks.PutByte. gomidi/v2 sends whole messages, not
// individual bytes, so bytes are buffered until a full message is known and
// then sent as one midi.Message.
func (t *GoMIDITransport) PutByte(b byte) {
	if b&0x80 != 0 {
		t.pending = []byte{b}
		return
	}
	if len(t.pending) == 0 {
		return
	}
	t.pending = append(t.pending, b)
	if len(t.pending) >= messageLen(t.pending[0]) {
		if err := t.send(midi.Message(t.pending)); err != nil {
			gomidiTransportDebug("send failed: %v", err)
		}
		t.pending = nil
	}
}

// Flush is a no-op: each gomidi/v2 send already completes synchronously.
func (t *GoMIDITransport) Flush() {}

// Close stops listening on the input port.
func (t *GoMIDITransport) Close() error {
	if t.stop != nil {
		t.stop()
	}
	return nil
}
