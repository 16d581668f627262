package selector

import "testing"

func TestSelectAllReturnsEveryCandidate(t *testing.T) {
	sel, err := New(All, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	candidates := []string{"B", "C"}
	got := sel.Select(candidates)
	if len(got) != 2 || got[0] != "B" || got[1] != "C" {
		t.Errorf("Select() = %v, want %v unchanged", got, candidates)
	}
}

func TestSelectRandomReturnsExactlyOne(t *testing.T) {
	sel, err := New(Random, 42)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	candidates := []string{"B", "C", "D"}
	got := sel.Select(candidates)
	if len(got) != 1 {
		t.Fatalf("Select() = %v, want exactly one candidate", got)
	}
	found := false
	for _, c := range candidates {
		if c == got[0] {
			found = true
		}
	}
	if !found {
		t.Errorf("Select() = %v, not among %v", got, candidates)
	}
}

func TestSelectRandomIsDeterministicForAFixedSeed(t *testing.T) {
	candidates := []string{"B", "C", "D", "E", "F"}

	sel1, _ := New(Random, 7)
	sel2, _ := New(Random, 7)

	for i := 0; i < 5; i++ {
		got1 := sel1.Select(candidates)
		got2 := sel2.Select(candidates)
		if got1[0] != got2[0] {
			t.Fatalf("iteration %d: two selectors built with the same seed diverged: %v vs %v", i, got1, got2)
		}
	}
}

func TestSelectEmptyCandidatesReturnsNil(t *testing.T) {
	sel, _ := New(All, 0)
	if got := sel.Select(nil); got != nil {
		t.Errorf("Select(nil) = %v, want nil", got)
	}
	if got := sel.Select([]string{}); got != nil {
		t.Errorf("Select([]) = %v, want nil", got)
	}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	if _, err := New(Mode("bogus"), 0); err == nil {
		t.Fatal("expected an error for an unrecognised selection mode")
	}
}

func TestModeReportsConfiguredStrategy(t *testing.T) {
	sel, _ := New(Random, 0)
	if sel.Mode() != Random {
		t.Errorf("Mode() = %q, want %q", sel.Mode(), Random)
	}
}
