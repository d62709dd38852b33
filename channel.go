package fretmidi

import "github.com/GeoffreyPlitt/debuggo"

var channelDebug = debuggo.Debug("fretmidi:channel")

// allocChannel implements the ChannelAllocator contract: least-loaded
// channel in [base, base+span), ties broken by cyclic distance after
// lastAllocatedChannel. It splices finger onto the tail of the winning
// channel's list and makes it the leader.
func (c *Context) allocChannel(finger int) int {
	base := c.config.channelBase
	span := c.config.channelSpan
	last := c.lastAllocatedChannel

	for k := 0; k <= FingerMax; k++ {
		for s := 0; s < span; s++ {
			offset := ((last+1+s-base)%span + span) % span
			ch := base + offset
			if c.channels[ch].useCount < 0 {
				c.fail("allocChannel: channel %d has negative use count %d", ch, c.channels[ch].useCount)
				continue
			}
			if c.channels[ch].useCount == k {
				c.spliceChannelTail(ch, finger)
				c.lastAllocatedChannel = ch
				channelDebug("finger %d allocated channel %d (occupancy now %d)", finger, ch, c.channels[ch].useCount)
				return ch
			}
		}
	}

	c.fail("allocChannel: no channel found for finger %d (span=%d)", finger, span)
	return base
}

// spliceChannelTail appends finger to the tail of channel ch's finger list
// and makes it the new leader (bend-owner).
func (c *Context) spliceChannelTail(ch, finger int) {
	oldTail := c.channels[ch].currentFingerInChannel
	c.fingers[finger].prevInChannel = oldTail
	c.fingers[finger].nextInChannel = Nobody
	c.fingers[finger].channel = ch
	if oldTail != Nobody {
		c.fingers[oldTail].nextInChannel = finger
	}
	c.channels[ch].currentFingerInChannel = finger
	c.channels[ch].useCount++
}

// freeChannel implements the ChannelAllocator.free contract: unlinks finger
// from its channel's list, decrements use_count, and promotes the previous
// (older) finger to leader if finger was the leader. The promoted leader's
// stored bend must be resent on its next update, so its channel's lastBend
// is poisoned to an impossible value to force that resend.
func (c *Context) freeChannel(finger int) {
	ch := c.fingers[finger].channel
	prev := c.fingers[finger].prevInChannel
	next := c.fingers[finger].nextInChannel

	if next != Nobody {
		c.fingers[next].prevInChannel = prev
	} else {
		c.channels[ch].currentFingerInChannel = prev
		if prev != Nobody {
			c.channels[ch].lastBend = -1 // impossible value: forces a resend
		}
	}
	if prev != Nobody {
		c.fingers[prev].nextInChannel = next
	}

	c.fingers[finger].nextInChannel = Nobody
	c.fingers[finger].prevInChannel = Nobody

	if c.channels[ch].useCount <= 0 {
		c.fail("freeChannel: channel %d use count would go negative", ch)
		return
	}
	c.channels[ch].useCount--
	channelDebug("finger %d freed channel %d (occupancy now %d)", finger, ch, c.channels[ch].useCount)
}

// GetChannelOccupancy reports the number of fingers currently assigned to
// channel, for diagnostics and tests.
func (c *Context) GetChannelOccupancy(channel int) int {
	if channel < 0 || channel >= ChannelMax {
		c.fail("GetChannelOccupancy: channel %d out of range", channel)
		return 0
	}
	return c.channels[channel].useCount
}

// GetChannelBend reports the channel's last-sent bend, normalized to
// [-1, +1). After a leader change, until the new leader's bend is resent,
// the channel holds the -1 resend sentinel and the result is just below -1.
func (c *Context) GetChannelBend(channel int) float64 {
	if channel < 0 || channel >= ChannelMax {
		c.fail("GetChannelBend: channel %d out of range", channel)
		return 0
	}
	return float64(c.channels[channel].lastBend-BendCenter) / BendCenter
}

// GetChannelVolume is declared as part of the channel query surface but has
// no well-defined answer: volume is a per-finger velocity, not a per-channel
// quantity, once more than one finger shares a channel. Kept as an explicit
// extension point rather than silently omitted.
func (c *Context) GetChannelVolume(channel int) (float64, error) {
	return 0, ErrNotImplemented
}
