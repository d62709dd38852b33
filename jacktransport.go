//go:build jack
// +build jack

package fretmidi

import (
	"fmt"
	"sync"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/xthexder/go-jack"
)

var jackTransportDebug = debuggo.Debug("fretmidi:jacktransport")

// JACKTransport is a real-time MIDI transport backed by a JACK client. It
// implements Callbacks.PutByte/Flush by buffering complete messages and
// draining them into a JACK MIDI output port from the process callback,
// and feeds bytes arriving on a JACK MIDI input port into a Decoder.
type JACKTransport struct {
	client  *jack.Client
	outPort *jack.Port
	inPort  *jack.Port

	mu      sync.Mutex
	pending []byte
	queue   [][]byte

	decoder *Decoder
}

// NewJACKTransport opens a JACK client named clientName, registers one MIDI
// output and one MIDI input port, and wires decoder to receive bytes read
// from the input port.
func NewJACKTransport(clientName string, decoder *Decoder) (*JACKTransport, error) {
	client, err := jack.ClientOpen(clientName, jack.NoStartServer)
	if err != nil {
		return nil, fmt.Errorf("failed to open JACK client: %w", err)
	}

	t := &JACKTransport{client: client, decoder: decoder}

	outPort, err := client.PortRegister("midi_out", jack.DEFAULT_MIDI_TYPE, jack.PortIsOutput, 0)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to register MIDI output port: %w", err)
	}
	t.outPort = outPort

	inPort, err := client.PortRegister("midi_in", jack.DEFAULT_MIDI_TYPE, jack.PortIsInput, 0)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to register MIDI input port: %w", err)
	}
	t.inPort = inPort

	client.SetProcessCallback(t.processCallback)

	if err := client.Activate(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to activate JACK client: %w", err)
	}

	jackTransportDebug("JACK transport activated as %q", clientName)
	return t, nil
}

// PutByte implements Callbacks.PutByte: it accumulates bytes into complete
// messages and queues each for the next process callback, since JACK MIDI
// writes are only legal from inside that callback. A message still
// unfinished when the next status byte arrives is queued as it stands.
func (t *JACKTransport) PutByte(b byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if b&0x80 != 0 {
		if len(t.pending) > 0 {
			t.queue = append(t.queue, t.pending)
		}
		t.pending = []byte{b}
		return
	}
	if len(t.pending) == 0 {
		return
	}
	t.pending = append(t.pending, b)
	if len(t.pending) >= messageLen(t.pending[0]) {
		t.queue = append(t.queue, t.pending)
		t.pending = nil
	}
}

// Flush implements Callbacks.Flush. It is a no-op: queued messages drain on
// the JACK thread's own clock via processCallback regardless.
func (t *JACKTransport) Flush() {}

func (t *JACKTransport) processCallback(nframes uint32) int {
	out := t.outPort.GetBuffer(nframes)
	jack.MidiClearBuffer(out)

	t.mu.Lock()
	queue := t.queue
	t.queue = nil
	t.mu.Unlock()

	for _, msg := range queue {
		jack.MidiEventWrite(out, 0, msg, nframes)
	}

	in := t.inPort.GetBuffer(nframes)
	count := jack.MidiGetEventCount(in)
	for i := uint32(0); i < count; i++ {
		event, err := jack.MidiEventGet(in, i)
		if err != nil {
			continue
		}
		for _, b := range event.Buffer {
			t.decoder.PutByte(b)
		}
	}

	return 0
}

// Close deactivates and closes the underlying JACK client.
func (t *JACKTransport) Close() error {
	if err := t.client.Deactivate(); err != nil {
		return fmt.Errorf("failed to deactivate JACK client: %w", err)
	}
	if err := t.client.Close(); err != nil {
		return fmt.Errorf("failed to close JACK client: %w", err)
	}
	return nil
}
