package fretmidi

import "github.com/GeoffreyPlitt/debuggo"

var selftestDebug = debuggo.Debug("fretmidi:selftest")

// SelfTest verifies every invariant that must hold whenever no finger is
// down. It is run automatically by Up whenever fingersDownCount reaches
// zero; a caller never needs to invoke it directly, but it is exported so
// a caller can deliberately re-check a context between gestures.
//
// On success it calls the Passed callback. On failure it performs the
// brute-force recovery sweep: a note-off for every (note, channel) pair,
// a Flush, and a full Boot — preserving configuration and callbacks, but
// discarding all finger/channel/poly-group state. This is the designed
// recovery path; a caller bug cannot leave stuck notes past the next
// all-fingers-up moment.
func (c *Context) SelfTest() {
	if ok := c.checkInvariants(); ok {
		selftestDebug("self-test passed")
		c.cb.Passed()
		return
	}

	selftestDebug("self-test failed, recovering")
	for n := 0; n < NoteMax; n++ {
		for ch := 0; ch < ChannelMax; ch++ {
			c.emitNoteOn(ch, n, 0)
		}
	}
	c.cb.Flush()
	c.Boot()
}

func (c *Context) checkInvariants() bool {
	ok := true

	for ch := 0; ch < ChannelMax; ch++ {
		if c.channels[ch].useCount != 0 {
			c.cb.Log("self-test: channel %d use count %d, want 0", ch, c.channels[ch].useCount)
			ok = false
		}
		if c.channels[ch].currentFingerInChannel != Nobody {
			c.cb.Log("self-test: channel %d leader %d, want Nobody", ch, c.channels[ch].currentFingerInChannel)
			ok = false
		}
	}

	for g := 0; g < PolyMax; g++ {
		if c.polyGroups[g].currentFingerInPolyGroup != Nobody {
			c.cb.Log("self-test: poly group %d leader %d, want Nobody", g, c.polyGroups[g].currentFingerInPolyGroup)
			ok = false
		}
	}

	for n := 0; n < NoteMax; n++ {
		for ch := 0; ch < ChannelMax; ch++ {
			if c.noteChannelDownCount[n][ch] != 0 {
				c.cb.Log("self-test: note %d channel %d down count %d, want 0", n, ch, c.noteChannelDownCount[n][ch])
				ok = false
			}
			if c.noteChannelDownRawBalance[n][ch] != 0 {
				c.cb.Log("self-test: note %d channel %d raw balance %d, want 0", n, ch, c.noteChannelDownRawBalance[n][ch])
				ok = false
			}
		}
	}

	for i := range c.fingers {
		f := &c.fingers[i]
		if f.isOn || f.isSuppressed || f.polyGroup != Nobody || f.visitingPolyGroup != Nobody ||
			f.nextInPolyGroup != Nobody || f.prevInPolyGroup != Nobody ||
			f.nextInChannel != Nobody || f.prevInChannel != Nobody {
			c.cb.Log("self-test: finger %d not fully reset", i)
			ok = false
		}
	}

	if c.fingersDownCount != 0 {
		c.cb.Log("self-test: fingersDownCount %d, want 0", c.fingersDownCount)
		ok = false
	}

	return ok
}
