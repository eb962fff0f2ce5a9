package browser

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoMatch reports that no candidate in a probe list matched the page.
var ErrNoMatch = errors.New("no candidate matched")

// Candidate is one entry in an ordered capability probe list. Either a CSS
// selector or a boolean JS expression identifies the capability; the first
// match wins.
type Candidate struct {
	Name     string
	Selector string
	Expr     string
}

// ProbeFirst walks candidates in order and returns the first that matches.
// Probing never mutates the page.
func ProbeFirst(ctx context.Context, page Page, candidates []Candidate) (Candidate, error) {
	for _, candidate := range candidates {
		matched, err := matches(ctx, page, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return Candidate{}, ctx.Err()
			}
			continue
		}
		if matched {
			return candidate, nil
		}
	}
	return Candidate{}, ErrNoMatch
}

// ClickFirst probes candidates in order and clicks the first selector match.
func ClickFirst(ctx context.Context, page Page, candidates []Candidate) (Candidate, error) {
	candidate, err := ProbeFirst(ctx, page, candidates)
	if err != nil {
		return Candidate{}, err
	}
	if candidate.Selector == "" {
		return Candidate{}, fmt.Errorf("candidate %s has no clickable selector", candidate.Name)
	}
	if err := page.Click(ctx, candidate.Selector); err != nil {
		return Candidate{}, fmt.Errorf("click %s: %w", candidate.Name, err)
	}
	return candidate, nil
}

func matches(ctx context.Context, page Page, candidate Candidate) (bool, error) {
	if candidate.Selector != "" {
		return page.Exists(ctx, candidate.Selector)
	}
	if candidate.Expr != "" {
		var result bool
		if err := page.Eval(ctx, candidate.Expr, &result); err != nil {
			return false, err
		}
		return result, nil
	}
	return false, nil
}
