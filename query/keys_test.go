package query

import "testing"

func TestKeyFor_Deterministic(t *testing.T) {
	a := KeyFor(Feed, "viewer-1")
	b := KeyFor(Feed, "viewer-1")
	if a != b {
		t.Errorf("same inputs produced different keys: %q vs %q", a, b)
	}
}

func TestKeyFor_ViewerScoped(t *testing.T) {
	a := KeyFor(Profile, "viewer-a")
	b := KeyFor(Profile, "viewer-b")
	if a == b {
		t.Errorf("different viewers collided on key %q", a)
	}
}

func TestKeyFor_ParamsSeparateEntries(t *testing.T) {
	a := MessagesKey("viewer-1", "conv-1")
	b := MessagesKey("viewer-1", "conv-2")
	if a == b {
		t.Errorf("different conversations collided on key %q", a)
	}
}

func TestKeyFor_Versioned(t *testing.T) {
	k := string(KeyFor(Feed, "viewer-1"))
	want := "v1:feed:viewer-1"
	if k != want {
		t.Errorf("KeyFor = %q, want %q", k, want)
	}
}
