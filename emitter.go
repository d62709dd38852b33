package fretmidi

import (
	"math"

	"github.com/GeoffreyPlitt/debuggo"
)

var emitDebug = debuggo.Debug("fretmidi:emit")

// Context is an emitter instance: one multi-timbral channel-cycling state
// machine. A Context is not safe for concurrent use; independent Contexts
// share no state.
type Context struct {
	config Config
	cb     Callbacks

	fingers    [FingerMax]FingerSlot
	channels   [ChannelMax]ChannelSlot
	polyGroups [PolyMax]PolyGroupSlot

	noteChannelDownCount      [NoteMax][ChannelMax]int
	noteChannelDownRawBalance [NoteMax][ChannelMax]int

	fingersDownCount      int
	lastAllocatedChannel  int
	booted                bool
}

// NewContext constructs an emitter context with the given callbacks. The
// context must still be configured (optionally) and Boot must be called
// before any gesture call.
func NewContext(cb Callbacks) *Context {
	return &Context{cb: cb.withDefaults(), config: defaultConfig()}
}

// --- configuration surface ---

func (c *Context) SetChannelBase(v int) { c.config.channelBase = v }
func (c *Context) GetChannelBase() int { return c.config.channelBase }

func (c *Context) SetChannelSpan(v int) { c.config.channelSpan = v }
func (c *Context) GetChannelSpan() int { return c.config.channelSpan }

func (c *Context) GetBendSemis() int { return c.config.bendSemis }

// SetBendSemis updates the bend range. If the context is already booted,
// the bend-range RPN sequence is re-emitted on every channel in the span.
func (c *Context) SetBendSemis(v int) {
	c.config.bendSemis = v
	if c.booted {
		c.config.clamp()
		c.emitBendRangeForSpan()
	}
}

func (c *Context) SetSuppressBends(v bool)  { c.config.suppressBends = v }
func (c *Context) GetSuppressBends() bool   { return c.config.suppressBends }

// --- boot ---

// Boot zeros all arrays, resets all finger slots, clamps configuration, and
// emits the bend-range RPN sequence for every channel in the span. It may
// be called at any moment all fingers are known up, without re-supplying
// configuration or callbacks; this is also the self-test recovery path.
func (c *Context) Boot() {
	c.config.clamp()

	for i := range c.fingers {
		c.fingers[i].reset()
	}
	for i := range c.channels {
		c.channels[i] = ChannelSlot{lastBend: BendCenter, currentFingerInChannel: Nobody}
	}
	for i := range c.polyGroups {
		c.polyGroups[i] = PolyGroupSlot{currentFingerInPolyGroup: Nobody}
	}
	for n := 0; n < NoteMax; n++ {
		for ch := 0; ch < ChannelMax; ch++ {
			c.noteChannelDownCount[n][ch] = 0
			c.noteChannelDownRawBalance[n][ch] = 0
		}
	}

	c.fingersDownCount = 0
	c.lastAllocatedChannel = c.config.channelBase + c.config.channelSpan - 1
	c.booted = true

	emitDebug("booted: base=%d span=%d bendSemis=%d suppressBends=%v",
		c.config.channelBase, c.config.channelSpan, c.config.bendSemis, c.config.suppressBends)

	c.emitBendRangeForSpan()
}

func (c *Context) emitBendRangeForSpan() {
	for ch := c.config.channelBase; ch < c.config.channelBase+c.config.channelSpan; ch++ {
		c.emitBendRangeRPN(ch)
	}
}

func (c *Context) emitBendRangeRPN(ch int) {
	c.emitCC(ch, ccRPNLow, 0)
	c.emitCC(ch, ccRPNHigh, 0)
	c.emitCC(ch, ccDataEntry, c.config.bendSemis)
	c.emitCC(ch, 38, 0)
	c.emitCC(ch, ccRPNLow, 127)
	c.emitCC(ch, ccRPNHigh, 127)
}

// --- internal assertion / emission helpers ---

func (c *Context) fail(format string, args ...any) {
	c.cb.Fail(format, args...)
}

func (c *Context) assertFingerRange(finger int) bool {
	if finger < 0 || finger >= FingerMax {
		c.fail("finger %d out of range [0,%d)", finger, FingerMax)
		return false
	}
	return true
}

func (c *Context) assertPolyGroupRange(group int) bool {
	if group != Nobody && (group < 0 || group >= PolyMax) {
		c.fail("poly group %d out of range [0,%d)", group, PolyMax)
		return false
	}
	return true
}

func (c *Context) assertFnoteRange(fnote float64) bool {
	if fnote < -0.5 || fnote >= 127.5 {
		c.fail("fnote %f out of range [-0.5, 127.5)", fnote)
		return false
	}
	return true
}

func (c *Context) assertVelocityRange(velocity int) bool {
	if velocity < 1 || velocity > 127 {
		c.fail("velocity %d out of range [1,127]", velocity)
		return false
	}
	return true
}

func (c *Context) assertBooted() bool {
	if !c.booted {
		c.fail("context not booted")
		return false
	}
	return true
}

func (c *Context) emitByte(b byte) { c.cb.PutByte(b) }

func (c *Context) emitNoteOn(channel, note, velocity int) {
	c.emitByte(byte(0x90 | (channel & 0x0F)))
	c.emitByte(byte(note & 0x7F))
	c.emitByte(byte(velocity & 0x7F))
}

func (c *Context) emitNoteOff(channel, note int) {
	c.emitNoteOn(channel, note, 0)
}

func (c *Context) emitCC(channel, cc, value int) {
	c.emitByte(byte(0xB0 | (channel & 0x0F)))
	c.emitByte(byte(cc & 0x7F))
	c.emitByte(byte(value & 0x7F))
}

func (c *Context) emitBend(channel, bend int) {
	c.emitByte(byte(0xE0 | (channel & 0x0F)))
	c.emitByte(byte(bend & 0x7F))
	c.emitByte(byte((bend >> 7) & 0x7F))
}

func (c *Context) emitPressure(channel, velocity int) {
	c.emitByte(byte(0xD0 | (channel & 0x0F)))
	c.emitByte(byte(velocity & 0x7F))
}

// emitNoteTie emits the NRPN triple that marks two adjacent note-ons on one
// channel as a single continuous gesture. The RPN-reset tail is
// deliberately never emitted here: synths interpret it inconsistently.
func (c *Context) emitNoteTie(channel, note int) {
	c.emitCC(channel, ccNRPNHigh, noteTieKeyHigh)
	c.emitCC(channel, ccNRPNLow, noteTieKeyLow)
	c.emitCC(channel, ccDataEntry, note)
}

// setCurrentBend emits a pitch bend for finger only if it is on,
// unsuppressed, the channel's leader, bends are not globally suppressed,
// and the channel's last-sent bend differs from the finger's stored bend.
// This value-change dedup is the library's only rate limiting.
func (c *Context) setCurrentBend(finger int) {
	f := &c.fingers[finger]
	if !f.isOn || f.isSuppressed {
		return
	}
	ch := f.channel
	if c.channels[ch].currentFingerInChannel != finger {
		return
	}
	if c.config.suppressBends {
		return
	}
	if c.channels[ch].lastBend == f.bend {
		return
	}
	c.emitBend(ch, f.bend)
	c.channels[ch].lastBend = f.bend
}

// setCurrentAftertouch mirrors setCurrentBend's guard for channel pressure.
func (c *Context) setCurrentAftertouch(finger int) {
	f := &c.fingers[finger]
	if !f.isOn || f.isSuppressed {
		return
	}
	ch := f.channel
	if c.channels[ch].currentFingerInChannel != finger {
		return
	}
	if c.config.suppressBends {
		return
	}
	if c.channels[ch].lastAftertouch == f.velocity {
		return
	}
	c.emitPressure(ch, f.velocity)
	c.channels[ch].lastAftertouch = f.velocity
}

// --- gesture operations ---

// BeginDown opens a finger: it must not already be down. It allocates a
// MIDI channel for the finger but emits no note; End supplies the pitch.
func (c *Context) BeginDown(finger int) {
	if !c.assertBooted() || !c.assertFingerRange(finger) {
		return
	}
	if c.fingers[finger].isOn {
		c.fail("BeginDown: finger %d already down", finger)
		return
	}
	c.fingers[finger].isOn = true
	c.fingers[finger].visitingPolyGroup = Nobody
	c.allocChannel(finger)
	c.fingersDownCount++
}

// End computes the fresh (note, bend) for fnote, links the finger into its
// poly group (if any), and emits note-on, following this emission order:
// pre-clearing note-off, bend update, suppressed-predecessor tie+off, then
// this finger's own note-on.
func (c *Context) End(finger int, fnote float64, polyGroup int, velocity int, legato Legato) {
	if !c.assertBooted() || !c.assertFingerRange(finger) || !c.assertPolyGroupRange(polyGroup) ||
		!c.assertFnoteRange(fnote) || !c.assertVelocityRange(velocity) {
		return
	}
	if !c.fingers[finger].isOn {
		c.fail("End: finger %d is not down", finger)
		return
	}

	f := &c.fingers[finger]
	note, bend := fnoteToNoteBend(fnote, c.config.bendSemis)
	f.note = note
	f.bend = bend
	f.velocity = velocity

	ch := f.channel
	c.noteChannelDownCount[note][ch]++

	turningOff := Nobody
	if polyGroup != Nobody {
		f.polyGroup = polyGroup
		turningOff = c.polyLink(finger, polyGroup)
	} else {
		f.polyGroup = Nobody
		f.isSuppressed = false
	}

	// 1. pre-clearing note-off if this (note,channel) is already sounding.
	if !f.isSuppressed && c.noteChannelDownCount[note][ch] > 1 {
		c.emitNoteOff(ch, note)
		c.noteChannelDownRawBalance[note][ch]--
	}

	// 2. bend update on this channel.
	c.setCurrentBend(finger)

	// 3. suppressed predecessor, under full legato.
	if turningOff != Nobody && legato == LegatoFull {
		tOff := &c.fingers[turningOff]
		c.emitNoteTie(tOff.channel, tOff.note)
		c.emitNoteOff(tOff.channel, tOff.note)
		c.noteChannelDownRawBalance[tOff.note][tOff.channel]--
	}

	// 4. this finger's own note-on.
	c.emitNoteOn(ch, note, velocity)
	c.noteChannelDownRawBalance[note][ch]++
	if c.noteChannelDownRawBalance[note][ch] > 1 {
		c.cb.Log("End: balance for note %d channel %d exceeds 1 (%d)", note, ch, c.noteChannelDownRawBalance[note][ch])
	}
}

// Up closes a finger: note-off is emitted unless the finger was suppressed
// or another finger still holds the same (note, channel). If the finger's
// poly group promotes a successor, that successor is given a fresh note-on
// (adopting the outgoing finger's velocity), optionally preceded by a
// note-tie when legato > 0.
func (c *Context) Up(finger int, legato Legato) {
	if !c.assertBooted() || !c.assertFingerRange(finger) {
		return
	}
	if !c.fingers[finger].isOn {
		c.fail("Up: finger %d is not down", finger)
		return
	}

	f := &c.fingers[finger]
	ch := f.channel
	note := f.note
	wasSuppressed := f.isSuppressed

	promoted := Nobody
	if f.polyGroup != Nobody {
		promoted = c.polyUnlink(finger)
	}

	if c.noteChannelDownCount[note][ch] <= 0 {
		c.fail("Up: note %d channel %d count would go negative", note, ch)
	} else {
		c.noteChannelDownCount[note][ch]--
	}

	if !wasSuppressed && c.noteChannelDownCount[note][ch] == 0 {
		if legato > LegatoNone && promoted != Nobody {
			c.emitNoteTie(ch, note)
		}
		c.emitNoteOff(ch, note)
		c.noteChannelDownRawBalance[note][ch]--
	}

	if promoted != Nobody {
		p := &c.fingers[promoted]
		c.channels[p.channel].lastBend = -1 // force resend on next update
		p.velocity = f.velocity
		c.emitNoteOn(p.channel, p.note, p.velocity)
		c.noteChannelDownRawBalance[p.note][p.channel]++
	}

	c.freeChannel(finger)
	f.reset()
	c.fingersDownCount--

	if c.fingersDownCount == 0 {
		c.SelfTest()
	}
}

// Move updates a held finger's pitch. If the pitch fits the current note's
// bend window, only the bend (and aftertouch/velocity) change; otherwise
// the retrigger protocol runs: the current note is tied off, the finger is
// brought up and back down on a freshly allocated channel at the new note.
//
// polyGroup is recorded as the finger's visitingPolyGroup but never changes
// actual group membership; only End (and the retrigger protocol's internal
// End) can relink a finger into a group, and the retrigger protocol relinks
// it into its existing group. A caller that supplies a different poly group
// on a later Move than it used at End has that value recorded but never
// acted on.
func (c *Context) Move(finger int, fnote float64, velocity int, polyGroup int) float64 {
	if !c.assertBooted() || !c.assertFingerRange(finger) || !c.assertFnoteRange(fnote) ||
		!c.assertVelocityRange(velocity) {
		return fnote
	}
	if !c.fingers[finger].isOn {
		c.fail("Move: finger %d is not down", finger)
		return fnote
	}
	if !c.assertPolyGroupRange(polyGroup) {
		return fnote
	}

	f := &c.fingers[finger]
	if polyGroup != Nobody {
		f.visitingPolyGroup = polyGroup
	}

	existingNote := f.note
	existingPolyGroup := f.polyGroup
	note, bend := fnoteFromExisting(existingNote, fnote, c.config.bendSemis)

	if note == existingNote {
		f.bend = bend
		f.velocity = velocity
		c.setCurrentAftertouch(finger)
		c.setCurrentBend(finger)
		return fnote
	}

	// Retrigger: the bend window was exhausted, so tie off the current note
	// and re-enter on a fresh channel rather than letting bend clip.
	ch := f.channel
	c.emitNoteTie(ch, existingNote)
	c.Up(finger, LegatoSoft)
	c.BeginDown(finger)
	c.End(finger, fnote, existingPolyGroup, velocity, LegatoFull)
	return fnote
}

// Express emits a single MIDI CC for finger. Callable any time between
// BeginDown and End's caller-visible closing Up, while the finger is down.
func (c *Context) Express(finger int, key int, val float64) {
	if !c.assertBooted() || !c.assertFingerRange(finger) {
		return
	}
	if !c.fingers[finger].isOn {
		c.fail("Express: finger %d is not down", finger)
		return
	}
	ch := c.fingers[finger].channel
	v := int(math.Round(val*127)) % 127
	if v < 0 {
		v += 127
	}
	c.emitCC(ch, key%127, v)
}

// Flush forwards to the sink's flush, marking a gesture boundary.
func (c *Context) Flush() { c.cb.Flush() }
