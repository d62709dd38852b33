package fretmidi

import "fmt"

// recordingSink is a test-only Callbacks backing store: it captures every
// emitted byte and every Fail/Passed/Log call instead of touching any real
// transport.
type recordingSink struct {
	bytes []byte

	failCount    int
	failMessages []string

	flushCount  int
	passedCount int

	logs []string
}

func (r *recordingSink) callbacks() Callbacks {
	return Callbacks{
		PutByte: func(b byte) { r.bytes = append(r.bytes, b) },
		Flush:   func() { r.flushCount++ },
		Fail: func(format string, args ...any) int {
			r.failCount++
			r.failMessages = append(r.failMessages, fmt.Sprintf(format, args...))
			return 0
		},
		Passed: func() { r.passedCount++ },
		Log: func(format string, args ...any) int {
			r.logs = append(r.logs, fmt.Sprintf(format, args...))
			return 0
		},
	}
}

func (r *recordingSink) reset() {
	r.bytes = nil
	r.failCount = 0
	r.failMessages = nil
	r.flushCount = 0
	r.passedCount = 0
	r.logs = nil
}

// messages groups r.bytes into fixed-size MIDI messages, for assertions
// that want to inspect complete note-on/off/CC/bend/pressure events rather
// than raw bytes.
func (r *recordingSink) messages() [][]byte {
	var out [][]byte
	var cur []byte
	for _, b := range r.bytes {
		if b&0x80 != 0 {
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = []byte{b}
			continue
		}
		cur = append(cur, b)
		if len(cur) >= messageLen(cur[0]) {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
