package browser

import (
	"context"
	"errors"
	"testing"
)

func TestProbeFirstReturnsFirstMatch(t *testing.T) {
	page := newFakePage()
	page.present["#second"] = true
	page.present["#third"] = true

	candidates := []Candidate{
		{Name: "first", Selector: "#first"},
		{Name: "second", Selector: "#second"},
		{Name: "third", Selector: "#third"},
	}
	got, err := ProbeFirst(context.Background(), page, candidates)
	if err != nil {
		t.Fatalf("ProbeFirst failed: %v", err)
	}
	if got.Name != "second" {
		t.Fatalf("matched %q, want second", got.Name)
	}
	if len(page.clicked) != 0 {
		t.Fatal("probing must not mutate the page")
	}
}

func TestProbeFirstNoMatch(t *testing.T) {
	page := newFakePage()
	_, err := ProbeFirst(context.Background(), page, []Candidate{{Name: "a", Selector: "#a"}})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestProbeFirstExprCandidate(t *testing.T) {
	page := newFakePage()
	page.evalBool["document.hasFocus()"] = true

	got, err := ProbeFirst(context.Background(), page, []Candidate{
		{Name: "focused", Expr: "document.hasFocus()"},
	})
	if err != nil {
		t.Fatalf("ProbeFirst failed: %v", err)
	}
	if got.Name != "focused" {
		t.Fatalf("matched %q", got.Name)
	}
}

func TestClickFirstClicksMatch(t *testing.T) {
	page := newFakePage()
	page.present["#button"] = true

	got, err := ClickFirst(context.Background(), page, []Candidate{
		{Name: "missing", Selector: "#missing"},
		{Name: "button", Selector: "#button"},
	})
	if err != nil {
		t.Fatalf("ClickFirst failed: %v", err)
	}
	if got.Name != "button" {
		t.Fatalf("clicked candidate %q", got.Name)
	}
	if len(page.clicked) != 1 || page.clicked[0] != "#button" {
		t.Fatalf("clicked selectors = %v", page.clicked)
	}
}

func TestClickFirstNoMatch(t *testing.T) {
	page := newFakePage()
	if _, err := ClickFirst(context.Background(), page, nil); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
