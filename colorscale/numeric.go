package colorscale

import (
	"sort"

	"github.com/keep94/consume"
	"github.com/keep94/treecolor/palette"
	"github.com/keep94/treecolor/scale"
	"github.com/keep94/treecolor/trait"
)

const (
	// Up to this many distinct values get one control point each.
	kMaxExactValues = 9

	// Integer traits spanning fewer states than this get one control
	// point per integer.
	kMaxIntegerStates = 11
)

// ContinuousScale builds the scale for a continuous trait. If d has
// bounds, they fix the ends of the scale. Otherwise the scale covers the
// values of name in all trees.
func ContinuousScale(d Continuous, name string, trees ...*trait.Tree) *scale.Linear {
	if d.HasBounds {
		return scale.Generic(d.VMin, d.VMax)
	}
	return MinMaxScale(name, trees...)
}

// MinMaxScale builds a linear scale over the numeric values of name in all
// trees. With at most 9 distinct values, each value becomes a control
// point. With more, the scale has 9 control points spread evenly from the
// smallest value to the largest. With no numeric values, the scale spans
// [0, 1].
func MinMaxScale(name string, trees ...*trait.Tree) *scale.Linear {
	values := distinctNumbers(name, trees)
	if len(values) == 0 {
		return scale.Generic(0, 1)
	}
	if len(values) <= kMaxExactValues {
		return scale.MustLinear(values, palette.For(len(values)))
	}
	return scale.Generic(values[0], values[len(values)-1])
}

// IntegerScale builds the scale for an integer trait. When the values of
// name span fewer than 11 states, each integer from the smallest to the
// largest value becomes a control point; otherwise IntegerScale works like
// scale.Generic.
func IntegerScale(name string, trees ...*trait.Tree) *scale.Linear {
	values := distinctNumbers(name, trees)
	if len(values) == 0 {
		return scale.Generic(0, 1)
	}
	min, max := values[0], values[len(values)-1]
	if max-min >= kMaxIntegerStates {
		return scale.Generic(min, max)
	}
	nStates := int(max - min)
	domain := make([]float64, nStates+1)
	for i := range domain {
		domain[i] = min + float64(i)
	}
	result, err := scale.NewLinear(domain, palette.For(len(domain)))
	if err != nil {
		// Values too large to step by 1
		return scale.Generic(min, max)
	}
	return result
}

// distinctNumbers returns the distinct numeric values of name in trees
// in ascending order.
func distinctNumbers(name string, trees []*trait.Tree) []float64 {
	var values []trait.Value
	consumer := trait.Distinct(trait.Numbers(consume.AppendTo(&values)))
	for _, t := range trees {
		t.Values(name, consumer)
	}
	result := make([]float64, len(values))
	for i := range values {
		result[i], _ = values[i].Float()
	}
	sort.Float64s(result)
	return result
}
