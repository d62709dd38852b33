package fretmidi

// FingerSlot holds everything the emitter tracks about one caller-assigned
// finger identity. All list fields are indices into Context.fingers, never
// pointers; Nobody terminates a list.
type FingerSlot struct {
	isOn         bool
	isSuppressed bool

	channel int
	note    int
	bend    int
	velocity int

	polyGroup         int
	visitingPolyGroup int // informational only; see Context.Move

	nextInPolyGroup int
	prevInPolyGroup int
	nextInChannel   int
	prevInChannel   int
}

func (f *FingerSlot) reset() {
	*f = FingerSlot{
		polyGroup:         Nobody,
		visitingPolyGroup: Nobody,
		nextInPolyGroup:   Nobody,
		prevInPolyGroup:   Nobody,
		nextInChannel:     Nobody,
		prevInChannel:     Nobody,
	}
}

// ChannelSlot is the per-MIDI-channel bookkeeping the ChannelAllocator and
// the bend/aftertouch dedup logic share.
type ChannelSlot struct {
	lastBend       int
	lastAftertouch int

	currentFingerInChannel int // the leader: bend-owner, tail of the list
	useCount               int
}

// PolyGroupSlot tracks the audible leader of one legato voice-stack.
type PolyGroupSlot struct {
	currentFingerInPolyGroup int
}

// Config is the tunable surface of an Emitter, set before Boot and
// re-clampable at any later Boot (including the self-test recovery reboot).
type Config struct {
	channelBase    int
	channelSpan    int
	bendSemis      int
	suppressBends  bool
}

func defaultConfig() Config {
	return Config{
		channelBase:   0,
		channelSpan:   ChannelMax,
		bendSemis:     2,
		suppressBends: false,
	}
}

func (c *Config) clamp() {
	if c.channelBase < 0 {
		c.channelBase = 0
	}
	if c.channelBase >= ChannelMax {
		c.channelBase = ChannelMax - 1
	}
	if c.channelSpan < 1 {
		c.channelSpan = 1
	}
	if c.channelSpan > ChannelMax {
		c.channelSpan = ChannelMax
	}
	if c.channelBase+c.channelSpan > ChannelMax {
		c.channelSpan = ChannelMax - c.channelBase
	}
	if c.bendSemis < 1 {
		c.bendSemis = 1
	}
	if c.bendSemis > 24 {
		c.bendSemis = 24
	}
}
