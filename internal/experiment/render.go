package experiment

import (
	"context"
	"strings"
)

// ContentElement is a content-bearing element with per-variant substitute
// content, keyed by lower-cased variant key.
type ContentElement struct {
	Experiment string
	Default    string
	Variants   map[string]string
}

// Render selects the element's content for the resolved variant. Unresolved
// experiments and unmatched or control variants keep the original content.
func (a *Assignments) Render(ctx context.Context, el ContentElement) string {
	variant, ok := a.Resolve(ctx, el.Experiment)
	if !ok {
		return el.Default
	}
	if content, ok := el.Variants[strings.ToLower(variant)]; ok {
		return content
	}
	return el.Default
}

// RenderAll applies Render over a set of elements. Elements referencing the
// same experiment receive the identical cached assignment.
func (a *Assignments) RenderAll(ctx context.Context, els []ContentElement) []string {
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = a.Render(ctx, el)
	}
	return out
}
