package fretmidi

import "github.com/GeoffreyPlitt/debuggo"

var decodeDebug = debuggo.Debug("fretmidi:decode")

// RawEngine is the decoder's sole injected capability: a semantic event
// delivered after each note-on/off, pitch-bend, channel-pressure, or
// expression-CC byte group, and after a note-tie NRPN data entry. attack is
// true for a nonzero-velocity note-on and for a note-tie; a note-tie reports
// pitch, volume and expr as zero. exprParm/expr report a CC 11 (expression)
// update; for any other event they are false/0.
type RawEngine func(channel int, attack bool, pitch float64, volume float64, exprParm bool, expr float64)

type decoderState int

const (
	stateStatus decoderState = iota
	stateData1
	stateData2
)

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingNoteOff
	pendingNoteOn
	pendingCC
	pendingBend
	pendingPressure
)

type paramMode int

const (
	paramNone paramMode = iota
	paramRPN
	paramNRPN
)

type channelDecodeState struct {
	lastNote   int
	lastVolume int
	lastBend   int
}

// Decoder is a byte-fed finite state machine that performs the inverse of
// Context: it turns a MIDI byte stream back into semantic events. Its
// per-channel state is entirely instance-local, so a Decoder is safe to
// construct per connection and never steps on another Decoder's state.
type Decoder struct {
	engine RawEngine

	// BendSemis is the pitch-bend range the decoder assumes while
	// reconstructing pitch. It defaults to 2 and is updated whenever an
	// RPN(0,0) data-entry CC arrives on the wire, the same constant the
	// emitter's bend-range RPN sequence advertises.
	BendSemis int

	state   decoderState
	pending pendingKind
	channel int

	dataNote   int
	dataLo     int
	ccSelector int

	mode         paramMode
	paramKeyHigh int
	paramKeyLow  int

	perChannel [ChannelMax]channelDecodeState
}

// NewDecoder constructs a Decoder delivering events to engine. Per-channel
// bend state starts at BendCenter, matching a freshly-booted Context.
func NewDecoder(engine RawEngine) *Decoder {
	d := &Decoder{engine: engine, BendSemis: 2}
	d.reset()
	return d
}

func (d *Decoder) reset() {
	for ch := range d.perChannel {
		d.perChannel[ch] = channelDecodeState{lastBend: BendCenter}
	}
	d.state = stateStatus
	d.pending = pendingNone
	d.mode = paramNone
}

// PutByte feeds one MIDI byte into the decoder. State is carried between
// calls; bounded work per call, no allocation, no blocking.
func (d *Decoder) PutByte(b byte) {
	if b&0x80 != 0 {
		d.handleStatus(b)
		return
	}

	val := int(b & 0x7F)
	switch d.state {
	case stateData1:
		d.handleData1(val)
	case stateData2:
		d.handleData2(val)
	default:
		decodeDebug("unexpected data byte %#x with no pending status", b)
	}
}

func (d *Decoder) handleStatus(b byte) {
	status := (b >> 4) & 0x0F
	channel := int(b & 0x0F)
	d.channel = channel
	d.state = stateData1

	switch status {
	case statusNoteOff:
		d.pending = pendingNoteOff
	case statusNoteOn:
		d.pending = pendingNoteOn
	case statusCC:
		d.pending = pendingCC
	case statusPressure:
		d.pending = pendingPressure
	case statusBend:
		d.pending = pendingBend
	default:
		decodeDebug("unknown status nibble %#x on channel %d", status, channel)
		d.state = stateStatus
		d.pending = pendingNone
	}
}

func (d *Decoder) handleData1(val int) {
	switch d.pending {
	case pendingNoteOff, pendingNoteOn:
		d.dataNote = val
		d.state = stateData2
	case pendingCC:
		d.ccSelector = val
		d.state = stateData2
	case pendingBend:
		d.dataLo = val
		d.state = stateData2
	case pendingPressure:
		ch := d.channel
		d.perChannel[ch].lastVolume = val
		d.emit(ch, false, false, 0)
		d.state = stateStatus
		d.pending = pendingNone
	default:
		d.state = stateStatus
	}
}

func (d *Decoder) handleData2(val int) {
	ch := d.channel
	switch d.pending {
	case pendingNoteOff:
		d.perChannel[ch].lastNote = d.dataNote
		d.perChannel[ch].lastVolume = val
		d.emit(ch, false, false, 0)
	case pendingNoteOn:
		d.perChannel[ch].lastNote = d.dataNote
		d.perChannel[ch].lastVolume = val
		d.emit(ch, val > 0, false, 0)
	case pendingBend:
		bend := (val << 7) | d.dataLo
		d.perChannel[ch].lastBend = bend
		d.emit(ch, false, false, 0)
	case pendingCC:
		d.handleCCData(ch, val)
	}
	d.state = stateStatus
	d.pending = pendingNone
}

// handleCCData implements the RPN/NRPN selector protocol: CC selectors
// 0x63/0x62 pick an NRPN key half, 101/100 pick an RPN key half
// (preserved exactly as specified, even though that pairing is the
// opposite of the real-world MIDI RPN-MSB/LSB convention — see DESIGN.md),
// CC 6 is the data-entry value for whichever parameter is currently
// selected, and CC 11 is expression.
func (d *Decoder) handleCCData(ch, value int) {
	switch d.ccSelector {
	case ccNRPNHigh:
		d.mode = paramNRPN
		d.paramKeyHigh = value
	case ccNRPNLow:
		d.mode = paramNRPN
		d.paramKeyLow = value
	case ccRPNLow:
		d.mode = paramRPN
		d.paramKeyLow = value
	case ccRPNHigh:
		d.mode = paramRPN
		d.paramKeyHigh = value
	case ccDataEntry:
		switch {
		case d.mode == paramRPN && d.paramKeyHigh == 0 && d.paramKeyLow == 0:
			d.BendSemis = value
		case d.mode == paramNRPN && d.paramKeyHigh == noteTieKeyHigh && d.paramKeyLow == noteTieKeyLow:
			// A note-tie marker carries no musical parameters of its own;
			// all are reported zero rather than the channel's persisted state.
			if d.engine != nil {
				d.engine(ch, true, 0, 0, false, 0)
			}
		}
	case ccExpression:
		d.emit(ch, false, true, float64(value)/127.0)
	default:
		decodeDebug("unrecognized CC selector %d on channel %d", d.ccSelector, ch)
	}
}

func (d *Decoder) emit(ch int, attack bool, exprParm bool, expr float64) {
	if d.engine == nil {
		return
	}
	st := d.perChannel[ch]
	pitch := float64(st.lastNote) + float64(d.BendSemis)*float64(st.lastBend-BendCenter)/BendCenter
	volume := float64(st.lastVolume) / 127.0
	d.engine(ch, attack, pitch, volume, exprParm, expr)
}
