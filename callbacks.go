package fretmidi

// Callbacks is the capability structure a Context consumes all OS/runtime
// capability through. It is supplied once at construction and never
// changed.
//
// PutByte and Flush are the byte-sink transport; Alloc/Free let a caller in
// a constrained environment supply its own allocator (this package itself
// never allocates on the hot path, but the capability is part of the
// contract); Fail is invoked, synchronously and side-effect-observably, on
// any caller protocol violation and on a use or down count that would go
// negative; Passed fires when a self-test succeeds; Log carries diagnostics
// distinct from Fail, including each invariant a failing self-test finds
// broken and a note/channel balance above 1.
type Callbacks struct {
	PutByte func(b byte)
	Flush   func()

	Alloc func(size int) any
	Free  func(p any)

	Fail   func(format string, args ...any) int
	Passed func()
	Log    func(format string, args ...any) int
}

// withDefaults fills in no-op implementations for any callback the caller
// left nil, so an Emitter never has to nil-check its own capability struct.
func (cb Callbacks) withDefaults() Callbacks {
	if cb.PutByte == nil {
		cb.PutByte = func(byte) {}
	}
	if cb.Flush == nil {
		cb.Flush = func() {}
	}
	if cb.Alloc == nil {
		cb.Alloc = func(int) any { return nil }
	}
	if cb.Free == nil {
		cb.Free = func(any) {}
	}
	if cb.Fail == nil {
		cb.Fail = func(string, ...any) int { return 0 }
	}
	if cb.Passed == nil {
		cb.Passed = func() {}
	}
	if cb.Log == nil {
		cb.Log = func(string, ...any) int { return 0 }
	}
	return cb
}
