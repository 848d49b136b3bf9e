package session

import (
	"encoding/json"
	"testing"
)

func TestResultDisplay(t *testing.T) {
	tests := []struct {
		r    Result
		want string
	}{
		{Result{}, "Waiting for compute"},
		{Result{Kind: Pending, Text: "ignored"}, "computing..."},
		{Result{Kind: Rejected, Text: EmptyInputMessage}, "Need dices input."},
		{Result{Kind: Completed, Text: "N/A"}, "N/A"},
		{Result{Kind: Completed}, ""},
	}
	for _, tt := range tests {
		if got := tt.r.Display(); got != tt.want {
			t.Errorf("%+v.Display() = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestKindJSON(t *testing.T) {
	b, err := json.Marshal(Result{Kind: Completed, Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"kind":"completed","text":"x"}` {
		t.Errorf("json = %s", b)
	}
	if Kind(9).String() != "kind(9)" {
		t.Errorf("unknown kind = %q", Kind(9).String())
	}
}
