package render

import (
	"reflect"
	"testing"

	"github.com/rcliao/d6calc/internal/dice"
	"github.com/rcliao/d6calc/internal/level"
	"github.com/rcliao/d6calc/internal/session"
)

func TestProjectEmpty(t *testing.T) {
	v := Project(session.Snapshot{})
	if !reflect.DeepEqual(v.Slots, []string{"D", "I", "C", "E"}) {
		t.Errorf("slots = %v", v.Slots)
	}
	if !v.Fine || v.Count != 0 {
		t.Errorf("fine=%v count=%d", v.Fine, v.Count)
	}
	if v.Summary != "0 D6s Total, spell lv 1" {
		t.Errorf("summary = %q", v.Summary)
	}
	if v.Result != "Waiting for compute" || v.State != "idle" {
		t.Errorf("result = %q state = %q", v.Result, v.State)
	}
	if v.Positions != 9 {
		t.Errorf("positions = %d", v.Positions)
	}
}

func TestProjectShortSequence(t *testing.T) {
	v := Project(session.Snapshot{Dice: dice.Parse("35"), Level: level.Clamp(2)})
	if !reflect.DeepEqual(v.Slots, []string{"3", "5", "", ""}) {
		t.Errorf("slots = %v", v.Slots)
	}
	if v.Summary != "2 D6s Total, spell lv 3" {
		t.Errorf("summary = %q", v.Summary)
	}
}

func TestProjectGrowsAndFlagsInvalid(t *testing.T) {
	v := Project(session.Snapshot{
		Dice:   dice.Parse("12a45"),
		Result: session.Result{Kind: session.Pending},
	})
	if len(v.Slots) != 5 || v.Slots[2] != "a" {
		t.Errorf("slots = %v", v.Slots)
	}
	if v.Fine {
		t.Error("expected invalid view")
	}
	if v.Summary != "Input D6 results plz..." {
		t.Errorf("summary = %q", v.Summary)
	}
	if v.Result != "computing..." {
		t.Errorf("result = %q", v.Result)
	}
}

func TestText(t *testing.T) {
	v := Project(session.Snapshot{
		Dice:   dice.Parse("12"),
		Level:  level.Clamp(1),
		Result: session.Result{Kind: session.Completed, Text: "N/A"},
	})
	want := "[1] [2] [ ] [ ]\n2 D6s Total, spell lv 2\n-o-------\n> N/A"
	if got := Text(v); got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}

	bad := Text(Project(session.Snapshot{Dice: dice.Parse("7")}))
	want = "!7! ! ! ! ! ! !\nInput D6 results plz...\no--------\n> Waiting for compute"
	if bad != want {
		t.Errorf("Text() =\n%s\nwant\n%s", bad, want)
	}
}
