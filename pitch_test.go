package fretmidi

import "testing"

func TestFnoteToNoteBendExact(t *testing.T) {
	note, bend := fnoteToNoteBend(60.0, 2)
	if note != 60 {
		t.Errorf("expected note 60, got %d", note)
	}
	if bend != BendCenter {
		t.Errorf("expected bend %d, got %d", BendCenter, bend)
	}
}

func TestFnoteToNoteBendRoundsHalfUp(t *testing.T) {
	cases := []struct {
		fnote float64
		note  int
	}{
		{-0.5, 0},
		{0.49, 0},
		{0.5, 1},
		{127.49999, 127},
	}
	for _, c := range cases {
		note, _ := fnoteToNoteBend(c.fnote, 2)
		if note != c.note {
			t.Errorf("fnoteToNoteBend(%v): expected note %d, got %d", c.fnote, c.note, note)
		}
	}
}

func TestFnoteToNoteBendFractional(t *testing.T) {
	note, bend := fnoteToNoteBend(60.5, 2)
	if note != 61 {
		t.Errorf("expected note 61, got %d", note)
	}
	if bend >= BendCenter {
		t.Errorf("expected bend below center for a downward fraction from the rounded note, got %d", bend)
	}
}

func TestFnoteFromExistingWithinWindow(t *testing.T) {
	note, bend := fnoteFromExisting(60, 61.0, 2)
	if note != 60 {
		t.Errorf("expected note to stay 60, got %d", note)
	}
	wantBend := BendCenter + int(float64(BendCenter)/2.0)
	if bend != wantBend {
		t.Errorf("expected bend %d, got %d", wantBend, bend)
	}
}

func TestFnoteFromExistingTriggersRetrigger(t *testing.T) {
	// 60 + many semitones escapes the +/-bendSemis window, forcing a fresh mapping.
	note, _ := fnoteFromExisting(60, 90.0, 2)
	if note == 60 {
		t.Errorf("expected a retrigger (different note) when fnote escapes the bend window, got same note")
	}
	if note != 90 {
		t.Errorf("expected fresh-mapped note 90, got %d", note)
	}
}

func TestFnoteFromExistingWindowBoundary(t *testing.T) {
	// bend computed as BendCenter + round((62-60)*BendCenter/2) == 2*BendCenter,
	// which is one past the representable window and must retrigger.
	note, bend := fnoteFromExisting(60, 62.0, 2)
	if note != 62 {
		t.Errorf("expected retrigger to note 62 at the window boundary, got note=%d bend=%d", note, bend)
	}
	if bend != BendCenter {
		t.Errorf("expected the fresh mapping's bend to be center, got %d", bend)
	}
}
