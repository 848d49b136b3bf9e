// Package dice parses hand-entered D6 results into an ordered sequence.
package dice

import (
	"strconv"
	"strings"
)

// Delimiter joins faces on the wire. It can never be a valid face itself.
const Delimiter = "|"

// MinSlots is the minimum width of the dice display grid.
const MinSlots = 4

// Face is a single six-sided die result in [1,6].
type Face int

// Valid reports whether f is a legal die face.
func (f Face) Valid() bool { return f >= 1 && f <= 6 }

// Entry is one typed character and its classification.
type Entry struct {
	Char string `json:"char"`
	Face Face   `json:"face,omitempty"`
	OK   bool   `json:"ok"`
}

// Sequence is the ordered list of typed characters. The zero value is the
// empty sequence.
type Sequence struct {
	entries []Entry
}

// Parse builds a sequence with one entry per character of text.
func Parse(text string) Sequence {
	if text == "" {
		return Sequence{}
	}
	entries := make([]Entry, 0, len(text))
	for _, r := range text {
		entries = append(entries, classify(string(r)))
	}
	return Sequence{entries: entries}
}

func classify(ch string) Entry {
	n, err := strconv.Atoi(ch)
	if err != nil {
		return Entry{Char: ch}
	}
	f := Face(n)
	if !f.Valid() {
		return Entry{Char: ch}
	}
	return Entry{Char: ch, Face: f, OK: true}
}

// Valid reports whether every character is a die face. An empty sequence
// is valid.
func (s Sequence) Valid() bool {
	for _, e := range s.entries {
		if !e.OK {
			return false
		}
	}
	return true
}

// Len returns the number of typed characters.
func (s Sequence) Len() int { return len(s.entries) }

// FaceAt returns the face at position i, if i is in range and the character
// there is a valid face.
func (s Sequence) FaceAt(i int) (Face, bool) {
	if i < 0 || i >= len(s.entries) || !s.entries[i].OK {
		return 0, false
	}
	return s.entries[i].Face, true
}

// CharAt returns the raw character at position i.
func (s Sequence) CharAt(i int) (string, bool) {
	if i < 0 || i >= len(s.entries) {
		return "", false
	}
	return s.entries[i].Char, true
}

// Chars returns the raw characters in input order.
func (s Sequence) Chars() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Char
	}
	return out
}

// Entries returns a copy of the classified entries.
func (s Sequence) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Slots returns how many display slots the sequence occupies.
func (s Sequence) Slots() int {
	return max(len(s.entries), MinSlots)
}

// Join serializes the characters in input order for the compute request.
// Invalid characters are forwarded as typed.
func (s Sequence) Join() string {
	return strings.Join(s.Chars(), Delimiter)
}

// String returns the text the sequence was parsed from.
func (s Sequence) String() string {
	return strings.Join(s.Chars(), "")
}
