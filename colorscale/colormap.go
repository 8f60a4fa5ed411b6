package colorscale

import (
	"github.com/keep94/consume"
	"github.com/keep94/treecolor/scale"
	"github.com/keep94/treecolor/trait"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	// Values missing from a color map get colors from kExtrasFrom to
	// kExtrasTo.
	kExtrasFrom = colorful.Color{R: 192.0 / 255.0, G: 192.0 / 255.0, B: 192.0 / 255.0}
	kExtrasTo   = colorful.Color{R: 32.0 / 255.0, G: 32.0 / 255.0, B: 32.0 / 255.0}
)

// ColorMapScale builds the scale for a trait with author supplied colors.
// The domain and range start with the entries of d in order. Values of
// name found in the trees but missing from d follow in the order first
// seen with grays running from light to dark.
func ColorMapScale(d ColorMap, name string, trees ...*trait.Tree) *scale.Ordinal {
	domain := make([]trait.Value, len(d.Entries))
	colors := make([]string, len(d.Entries))
	declared := make(map[string]bool, len(d.Entries))
	for i, e := range d.Entries {
		domain[i] = e.Value
		colors[i] = e.Color
		declared[e.Value.String()] = true
	}
	extras := ExtraValues(declared, name, trees...)
	domain = append(domain, extras...)
	colors = append(colors, scale.ListOfColors(len(extras), kExtrasFrom, kExtrasTo)...)
	return scale.NewOrdinal(domain, colors)
}

// ExtraValues returns the distinct values of name in trees whose string
// form is not in declared. Values are returned in the order first seen.
func ExtraValues(
	declared map[string]bool, name string, trees ...*trait.Tree) []trait.Value {
	var observed []trait.Value
	consumer := trait.Distinct(consume.AppendTo(&observed))
	for _, t := range trees {
		t.Values(name, consumer)
	}
	seen := make(map[string]bool, len(observed))
	var result []trait.Value
	for _, v := range observed {
		key := v.String()
		if declared[key] || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, v)
	}
	return result
}
