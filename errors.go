package fretmidi

import "errors"

// ErrNotImplemented is returned by query surface with no well-defined
// answer in this model. GetChannelVolume is a deliberate stub rather than
// invented behavior.
var ErrNotImplemented = errors.New("fretmidi: not implemented")
