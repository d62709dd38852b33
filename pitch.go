package fretmidi

import "math"

// fnoteToNoteBend implements the fresh mapping: round fnote to the nearest
// note (ties rounding up, so -0.5 lands on note 0) and compute the 14-bit
// bend needed to reach fnote exactly from that note, given bendSemis.
func fnoteToNoteBend(fnote float64, bendSemis int) (note, bend int) {
	note = int(math.Floor(fnote + 0.5))
	frac := fnote - float64(note)
	bend = BendCenter + int(math.Round(frac*float64(BendCenter)/float64(bendSemis)))
	return note, bend
}

// fnoteFromExisting implements the incremental mapping: compute the bend
// needed to reach fnote from an already-sounding note. If that bend stays
// within the representable window [0, 2*BendCenter), the note is kept and
// the caller need not retrigger. Otherwise it falls back to a fresh mapping
// and the caller must compare the returned note to existingNote to detect
// that a retrigger is required.
func fnoteFromExisting(existingNote int, fnote float64, bendSemis int) (note, bend int) {
	bend = BendCenter + int(math.Round((fnote-float64(existingNote))*float64(BendCenter)/float64(bendSemis)))
	if bend >= 0 && bend < 2*BendCenter {
		return existingNote, bend
	}
	return fnoteToNoteBend(fnote, bendSemis)
}
