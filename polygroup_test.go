package fretmidi

import "testing"

func TestPolyLinkSuppressesPriorLeader(t *testing.T) {
	c, _ := newTestContext(t)

	c.BeginDown(0)
	c.End(0, 60, 3, 100, LegatoNone)
	if c.fingers[0].isSuppressed {
		t.Fatalf("first finger into an empty poly group must not be suppressed")
	}

	c.BeginDown(1)
	c.End(1, 64, 3, 100, LegatoFull)
	if !c.fingers[0].isSuppressed {
		t.Errorf("expected finger 0 suppressed after finger 1 joined the same poly group")
	}
	if c.fingers[1].isSuppressed {
		t.Errorf("expected finger 1, the new leader, to stay unsuppressed")
	}
	if c.polyGroups[3].currentFingerInPolyGroup != 1 {
		t.Errorf("expected finger 1 to be the poly group leader, got %d", c.polyGroups[3].currentFingerInPolyGroup)
	}
}

func TestPolyUnlinkPromotesPredecessor(t *testing.T) {
	c, _ := newTestContext(t)

	c.BeginDown(0)
	c.End(0, 60, 3, 100, LegatoNone)
	c.BeginDown(1)
	c.End(1, 64, 3, 100, LegatoFull)

	c.Up(1, LegatoSoft)

	if c.fingers[0].isSuppressed {
		t.Errorf("expected finger 0 promoted (un-suppressed) after leader finger 1 released")
	}
	if c.polyGroups[3].currentFingerInPolyGroup != 0 {
		t.Errorf("expected finger 0 to become the poly group leader, got %d", c.polyGroups[3].currentFingerInPolyGroup)
	}
}

func TestPolyUnlinkEmptiesGroup(t *testing.T) {
	c, _ := newTestContext(t)

	c.BeginDown(0)
	c.End(0, 60, 5, 100, LegatoNone)
	c.Up(0, LegatoNone)

	if c.polyGroups[5].currentFingerInPolyGroup != Nobody {
		t.Errorf("expected poly group 5 empty after its only member released, got %d", c.polyGroups[5].currentFingerInPolyGroup)
	}
}

func TestEndWithoutPolyGroupNeverSuppresses(t *testing.T) {
	c, _ := newTestContext(t)

	c.BeginDown(0)
	c.End(0, 60, Nobody, 100, LegatoNone)
	c.BeginDown(1)
	c.End(1, 64, Nobody, 100, LegatoNone)

	if c.fingers[0].isSuppressed || c.fingers[1].isSuppressed {
		t.Errorf("fingers outside a poly group must never be suppressed")
	}
}
