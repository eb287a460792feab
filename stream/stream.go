// Package stream frames words for the streaming ingress and egress
// interfaces. Every frame has exactly one start marker on its first word and
// one end marker on its last word.
package stream

import (
	"errors"
	"fmt"
)

// Beat is one word of a stream.
type Beat struct {
	Data uint32
	SOP  bool
	EOP  bool
}

// Framing errors.
var (
	ErrMissingStart  = errors.New("beat outside of a frame has no start marker")
	ErrUnexpectedSOP = errors.New("start marker inside an open frame")
)

// Frame marks a complete slice of words as one frame.
func Frame(words []uint32) []Beat {
	beats := make([]Beat, len(words))
	for i, w := range words {
		beats[i] = Beat{Data: w, SOP: i == 0, EOP: i == len(words)-1}
	}

	return beats
}

// Framer marks a continuous word stream with frame boundaries every
// frameLen words.
type Framer struct {
	frameLen int
	pos      int
}

// NewFramer creates a framer.
func NewFramer(frameLen int) *Framer {
	if frameLen <= 0 {
		panic(fmt.Sprintf("frame length must be positive, got %d", frameLen))
	}

	return &Framer{frameLen: frameLen}
}

// Next frames one word.
func (f *Framer) Next(word uint32) Beat {
	b := Beat{Data: word, SOP: f.pos == 0, EOP: f.pos == f.frameLen-1}

	f.pos++
	if f.pos == f.frameLen {
		f.pos = 0
	}

	return b
}

// Reset restarts framing at a frame boundary.
func (f *Framer) Reset() {
	f.pos = 0
}

// Deframer checks frame markers on an incoming stream.
type Deframer struct {
	open       bool
	frames     int
	words      int
	violations int
}

// Accept checks one beat. A violating beat is still counted as a word, and
// the deframer resynchronizes on it.
func (d *Deframer) Accept(b Beat) error {
	var err error

	switch {
	case b.SOP && d.open:
		err = ErrUnexpectedSOP
	case !b.SOP && !d.open:
		err = ErrMissingStart
	}

	if err != nil {
		d.violations++
	}

	d.words++
	d.open = true

	if b.EOP {
		d.open = false
		d.frames++
	}

	return err
}

// InFrame reports whether a frame is open.
func (d *Deframer) InFrame() bool {
	return d.open
}

// Frames returns the number of completed frames.
func (d *Deframer) Frames() int {
	return d.frames
}

// Words returns the number of accepted beats.
func (d *Deframer) Words() int {
	return d.words
}

// Violations returns the number of framing errors seen.
func (d *Deframer) Violations() int {
	return d.violations
}

// Reset drops any open frame and clears the counters.
func (d *Deframer) Reset() {
	*d = Deframer{}
}
