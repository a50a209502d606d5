package selection

import (
	"reflect"
	"testing"
)

func TestToggleIgnoredWhileBrowsing(t *testing.T) {
	c := New()
	c.Toggle("m1")
	if c.Count() != 0 {
		t.Fatalf("expected empty selection while browsing, got %d", c.Count())
	}
	if c.Mode() != Browsing {
		t.Fatalf("expected Browsing mode, got %v", c.Mode())
	}
}

func TestDoubleToggleRestoresState(t *testing.T) {
	c := New()
	c.EnterSelectionMode()
	c.Toggle("m1")
	if !c.IsSelected("m1") {
		t.Fatal("expected m1 selected after first toggle")
	}
	c.Toggle("m1")
	if c.IsSelected("m1") {
		t.Fatal("expected m1 deselected after second toggle")
	}
	if c.Count() != 0 {
		t.Fatalf("expected empty selection, got %d", c.Count())
	}
}

func TestSelectAllReplacesSelection(t *testing.T) {
	c := New()
	c.EnterSelectionMode()
	c.Toggle("stale")
	c.SelectAll([]string{"m1", "m2", "m3"})
	got := c.SelectedIDs()
	want := []string{"m1", "m2", "m3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SelectedIDs = %v, want %v", got, want)
	}
	if c.IsSelected("stale") {
		t.Fatal("SelectAll should drop ids not in the visible set")
	}
}

func TestSelectAllIgnoredWhileBrowsing(t *testing.T) {
	c := New()
	c.SelectAll([]string{"m1", "m2"})
	if c.Count() != 0 {
		t.Fatalf("expected empty selection, got %d", c.Count())
	}
}

func TestExitClearsSelection(t *testing.T) {
	c := New()
	c.EnterSelectionMode()
	c.Toggle("m1")
	c.Toggle("m2")
	c.ExitSelectionMode()
	if c.Mode() != Browsing {
		t.Fatalf("expected Browsing after exit, got %v", c.Mode())
	}
	if c.Count() != 0 {
		t.Fatalf("expected selection cleared on exit, got %d ids", c.Count())
	}
}

func TestClearKeepsMode(t *testing.T) {
	c := New()
	c.EnterSelectionMode()
	c.Toggle("m1")
	c.Clear()
	if c.Count() != 0 {
		t.Fatalf("expected empty selection, got %d", c.Count())
	}
	if c.Mode() != Selecting {
		t.Fatal("Clear must not leave Selecting mode")
	}
}

func TestPruneDropsInvisibleIDs(t *testing.T) {
	c := New()
	c.EnterSelectionMode()
	c.SelectAll([]string{"m1", "m2", "m3"})

	c.Prune([]string{"m1", "m3"})
	want := []string{"m1", "m3"}
	if got := c.SelectedIDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after prune: %v, want %v", got, want)
	}
}

func TestPruneIdempotent(t *testing.T) {
	c := New()
	c.EnterSelectionMode()
	c.SelectAll([]string{"m1", "m2", "m3"})

	visible := []string{"m2", "m3"}
	c.Prune(visible)
	first := c.SelectedIDs()
	c.Prune(visible)
	second := c.SelectedIDs()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("prune not idempotent: %v then %v", first, second)
	}
}
