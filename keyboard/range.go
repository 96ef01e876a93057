// Package keyboard describes which notes a performer's keyboard can produce.
package keyboard

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

const (
	// MaxNote is the highest MIDI note number.
	MaxNote uint8 = 127

	// MinSpan is the smallest distance allowed between Start and End when adjusting a range.
	MinSpan uint8 = 24
)

// Range is a closed interval of MIDI notes [Start, End].
type Range struct {
	Start uint8 `json:"start"`
	End   uint8 `json:"end"`
}

// Standard88 is the range of an 88-key piano (A0..C8).
func Standard88() Range {
	return Range{Start: 21, End: 108}
}

// Full covers every MIDI note.
func Full() Range {
	return Range{Start: 0, End: MaxNote}
}

// New returns a range from start to end, swapping the bounds if needed.
func New(start, end uint8) Range {
	if start > end {
		start, end = end, start
	}
	return Range{Start: clamp(start, 0, MaxNote), End: clamp(end, 0, MaxNote)}
}

// Contains reports whether note can be produced by the keyboard.
func (r Range) Contains(note uint8) bool {
	return note >= r.Start && note <= r.End
}

// Count returns the number of keys in the range.
func (r Range) Count() int {
	if r.End < r.Start {
		return 0
	}
	return int(r.End) - int(r.Start) + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// RaiseStart moves the low bound up by one key, keeping at least MinSpan keys.
func (r Range) RaiseStart() Range {
	v := clamp(int(r.Start)+1, 0, int(MaxNote))
	if v+int(MinSpan) < int(r.End) {
		r.Start = uint8(v)
	}
	return r
}

// LowerStart moves the low bound down by one key, saturating at 0.
func (r Range) LowerStart() Range {
	if r.Start > 0 {
		r.Start--
	}
	return r
}

// RaiseEnd moves the high bound up by one key, saturating at MaxNote.
func (r Range) RaiseEnd() Range {
	r.End = uint8(clamp(int(r.End)+1, 0, int(MaxNote)))
	return r
}

// LowerEnd moves the high bound down by one key, keeping at least MinSpan keys.
func (r Range) LowerEnd() Range {
	if r.End == 0 {
		return r
	}
	v := r.End - 1
	if int(r.Start)+int(MinSpan) < int(v) {
		r.End = v
	}
	return r
}

func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
