package lifecycle

import "testing"

func TestWatcher_DeliversTransitions(t *testing.T) {
	w := NewWatcher()

	type transition struct{ from, to State }
	var got []transition
	w.Subscribe(func(from, to State) {
		got = append(got, transition{from, to})
	})

	w.Set(StateBackground)
	w.Set(StateBackground) // no-op
	w.Set(StateActive)

	want := []transition{
		{StateActive, StateBackground},
		{StateBackground, StateActive},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d transitions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, got[i], want[i])
		}
	}
	if w.State() != StateActive {
		t.Errorf("State() = %v, want %v", w.State(), StateActive)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateActive:     "active",
		StateInactive:   "inactive",
		StateBackground: "background",
		State(42):       "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
