package fretmidi

// messageLen reports how many bytes a complete MIDI message starting with
// status occupies, mirroring Decoder's own per-status framing. Shared by
// the optional transport adapters, which must buffer Callbacks.PutByte's
// one-byte-at-a-time stream into whole messages before handing them to a
// message-oriented backend.
func messageLen(status byte) int {
	switch (status >> 4) & 0x0F {
	case statusPressure:
		return 2
	case statusNoteOff, statusNoteOn, statusCC, statusBend:
		return 3
	default:
		return 1
	}
}
