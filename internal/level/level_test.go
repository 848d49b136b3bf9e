package level

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		in   int
		want Level
	}{
		{-100, 0},
		{-1, 0},
		{0, 0},
		{4, 4},
		{8, 8},
		{9, 8},
		{1 << 30, 8},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSelectorDefault(t *testing.T) {
	var s Selector
	if s.Value() != 0 {
		t.Errorf("default level = %d, want 0", s.Value())
	}
	if Positions != 9 {
		t.Errorf("Positions = %d, want 9", Positions)
	}
}

func TestSelectorStaysInRange(t *testing.T) {
	var s Selector
	moves := []int{3, -10, 20, 1, -1, 8, -8, 100, -3}
	for i, m := range moves {
		if i%2 == 0 {
			s.Step(m)
		} else {
			s.Set(m)
		}
		if v := s.Value(); v < Min || v > Max {
			t.Fatalf("after move %d level = %d, out of range", i, v)
		}
	}
}

func TestStep(t *testing.T) {
	var s Selector
	s.Step(1)
	s.Step(1)
	if s.Value() != 2 {
		t.Errorf("got %d, want 2", s.Value())
	}
	s.Step(-5)
	if s.Value() != 0 {
		t.Errorf("got %d, want 0", s.Value())
	}
}

func TestString(t *testing.T) {
	if got := Level(0).String(); got != "0" {
		t.Errorf("got %q", got)
	}
	if got := Clamp(7).String(); got != "7" {
		t.Errorf("got %q", got)
	}
}
