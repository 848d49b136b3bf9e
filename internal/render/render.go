// Package render projects session state into display content.
package render

import (
	"fmt"
	"strings"

	"github.com/rcliao/d6calc/internal/level"
	"github.com/rcliao/d6calc/internal/session"
)

// placeholder fills the grid while nothing has been typed.
var placeholder = [...]string{"D", "I", "C", "E"}

const invalidSummary = "Input D6 results plz..."

// View is everything a surface needs to draw one frame.
type View struct {
	Slots     []string `json:"slots"`
	Fine      bool     `json:"fine"`
	Count     int      `json:"count"`
	Summary   string   `json:"summary"`
	Level     int      `json:"level"`
	Positions int      `json:"positions"`
	State     string   `json:"state"`
	Result    string   `json:"result"`
}

// Project builds the view for snap.
func Project(snap session.Snapshot) View {
	seq := snap.Dice
	slots := make([]string, seq.Slots())
	for i := range slots {
		if ch, ok := seq.CharAt(i); ok {
			slots[i] = ch
		} else if seq.Len() == 0 && i < len(placeholder) {
			slots[i] = placeholder[i]
		}
	}

	v := View{
		Slots:     slots,
		Fine:      seq.Valid(),
		Count:     seq.Len(),
		Level:     int(snap.Level),
		Positions: level.Positions,
		State:     snap.Result.Kind.String(),
		Result:    snap.Result.Display(),
	}
	if v.Fine {
		// levels are shown one-based
		v.Summary = fmt.Sprintf("%d D6s Total, spell lv %d", seq.Len(), int(snap.Level)+1)
	} else {
		v.Summary = invalidSummary
	}
	return v
}

// Text draws v for a terminal. Invalid input is bracketed with "!".
func Text(v View) string {
	left, right := "[", "]"
	if !v.Fine {
		left, right = "!", "!"
	}

	var b strings.Builder
	for i, s := range v.Slots {
		if i > 0 {
			b.WriteByte(' ')
		}
		if s == "" {
			s = " "
		}
		b.WriteString(left + s + right)
	}
	b.WriteByte('\n')
	b.WriteString(v.Summary)
	b.WriteByte('\n')

	for i := 0; i < v.Positions; i++ {
		if i == v.Level {
			b.WriteByte('o')
		} else {
			b.WriteByte('-')
		}
	}
	b.WriteByte('\n')
	b.WriteString("> " + v.Result)
	return b.String()
}
