package fretmidi

import "testing"

type recordedEvent struct {
	channel  int
	attack   bool
	pitch    float64
	volume   float64
	exprParm bool
	expr     float64
}

func newRecordingDecoder() (*Decoder, *[]recordedEvent) {
	events := &[]recordedEvent{}
	d := NewDecoder(func(channel int, attack bool, pitch, volume float64, exprParm bool, expr float64) {
		*events = append(*events, recordedEvent{channel, attack, pitch, volume, exprParm, expr})
	})
	return d, events
}

func putAll(d *Decoder, bytes ...byte) {
	for _, b := range bytes {
		d.PutByte(b)
	}
}

func TestDecoderNoteOn(t *testing.T) {
	d, events := newRecordingDecoder()
	putAll(d, 0x90, 60, 100)

	if len(*events) != 1 {
		t.Fatalf("expected one event, got %d", len(*events))
	}
	e := (*events)[0]
	if !e.attack || e.pitch != 60 || e.volume != float64(100)/127.0 {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestDecoderNoteOnZeroVelocityIsNotAttack(t *testing.T) {
	d, events := newRecordingDecoder()
	putAll(d, 0x90, 60, 0)

	e := (*events)[0]
	if e.attack {
		t.Errorf("expected a note-on with velocity 0 to report attack=false, got %+v", e)
	}
}

func TestDecoderNoteOff(t *testing.T) {
	d, events := newRecordingDecoder()
	putAll(d, 0x80, 60, 0)

	e := (*events)[0]
	if e.attack {
		t.Errorf("expected note-off to report attack=false, got %+v", e)
	}
}

func TestDecoderPitchBendReconstructsPitch(t *testing.T) {
	d, events := newRecordingDecoder()
	putAll(d, 0x90, 60, 100) // note-on at note 60, bend still center
	putAll(d, 0xE0, 0, 127)  // max bend-high byte -> bend far above center

	if len(*events) != 2 {
		t.Fatalf("expected two events, got %d", len(*events))
	}
	e := (*events)[1]
	if e.pitch <= 60 {
		t.Errorf("expected pitch above 60 after an upward bend, got %v", e.pitch)
	}
}

func TestDecoderChannelPressure(t *testing.T) {
	d, events := newRecordingDecoder()
	putAll(d, 0x90, 60, 100)
	putAll(d, 0xD0, 64)

	e := (*events)[1]
	if e.volume != float64(64)/127.0 {
		t.Errorf("expected channel pressure to update volume to %v, got %v", float64(64)/127.0, e.volume)
	}
}

func TestDecoderExpressionCC(t *testing.T) {
	d, events := newRecordingDecoder()
	putAll(d, 0xB0, ccExpression, 64)

	e := (*events)[0]
	if !e.exprParm || e.expr != float64(64)/127.0 {
		t.Errorf("expected expression event, got %+v", e)
	}
}

func TestDecoderRPNBendRangeUpdatesBendSemis(t *testing.T) {
	d, _ := newRecordingDecoder()
	putAll(d,
		0xB0, ccRPNLow, 0,
		0xB0, ccRPNHigh, 0,
		0xB0, ccDataEntry, 5,
	)
	if d.BendSemis != 5 {
		t.Errorf("expected BendSemis updated to 5, got %d", d.BendSemis)
	}
}

func TestDecoderNoteTieReportsZeroedParameters(t *testing.T) {
	d, events := newRecordingDecoder()
	putAll(d, 0x90, 60, 100) // establish nonzero channel state
	*events = nil

	putAll(d,
		0xB0, ccNRPNHigh, noteTieKeyHigh,
		0xB0, ccNRPNLow, noteTieKeyLow,
		0xB0, ccDataEntry, 71,
	)

	if len(*events) != 1 {
		t.Fatalf("expected exactly one note-tie event, got %d", len(*events))
	}
	e := (*events)[0]
	if !e.attack || e.pitch != 0 || e.volume != 0 || e.exprParm || e.expr != 0 {
		t.Errorf("expected a note-tie event with all musical parameters zero, got %+v", e)
	}
}

func TestDecoderRoundTripWithEmitter(t *testing.T) {
	d, events := newRecordingDecoder()
	c := NewContext(Callbacks{PutByte: d.PutByte})
	c.Boot()
	*events = nil // discard boot-time RPN bytes (no events: CC 101/100/38 aren't data-entry or expression)

	c.BeginDown(0)
	c.End(0, 60.25, Nobody, 100, LegatoNone) // fractional: emits a bend update, then the note-on

	var attackEvent *recordedEvent
	for i := range *events {
		if (*events)[i].attack {
			attackEvent = &(*events)[i]
		}
	}
	if attackEvent == nil {
		t.Fatalf("expected a decoded attack event among %+v", *events)
	}
	tolerance := 1.0 / float64(BendCenter) // half a bend LSB at bendSemis 2: the most integer rounding can be off
	if diff := attackEvent.pitch - 60.25; diff > tolerance || diff < -tolerance {
		t.Errorf("expected decoded pitch within %v of 60.25, got %v", tolerance, attackEvent.pitch)
	}
}
