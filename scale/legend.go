package scale

import (
	"math"
	"sort"

	"github.com/keep94/treecolor/trait"
)

// LegendBounds holds the numeric interval of each legend entry. A raw
// value x matches legend entry v if Lower[v] <= x < Upper[v] where v is
// the string form of the domain value. The first entry has no lower
// bound and the last entry has no upper bound.
// These instances must be treated as immutable.
type LegendBounds struct {
	Lower map[string]float64
	Upper map[string]float64
	order []trait.Value
}

// NewLegendBounds computes the legend bounds of domain. The entries of
// domain are taken in ascending numeric order whatever order domain has,
// so entry i > 0 of the sorted domain spans from entry i-1 to entry i.
// If any entry of domain is not a number, the returned bounds are empty.
func NewLegendBounds(domain []trait.Value) LegendBounds {
	result := LegendBounds{
		Lower: make(map[string]float64, len(domain)),
		Upper: make(map[string]float64, len(domain)),
	}
	for i := range domain {
		if !domain[i].IsNumber() {
			return result
		}
	}
	domain = append([]trait.Value(nil), domain...)
	sort.SliceStable(domain, func(i, j int) bool {
		x, _ := domain[i].Float()
		y, _ := domain[j].Float()
		return x < y
	})
	values := make([]float64, len(domain))
	for i := range domain {
		values[i], _ = domain[i].Float()
	}
	for i := range domain {
		key := domain[i].String()
		if i == 0 {
			result.Lower[key] = math.Inf(-1)
		} else {
			result.Lower[key] = values[i-1]
		}
		result.Upper[key] = values[i]
	}
	if len(domain) > 0 {
		result.Upper[domain[len(domain)-1].String()] = math.Inf(1)
	}
	result.order = domain
	return result
}

// Len returns the number of legend entries with bounds.
func (b LegendBounds) Len() int {
	return len(b.order)
}

// Match returns the legend entry whose interval contains x. The last
// entry also contains its upper bound. Match returns false if there are
// no bounds or x is NaN.
func (b LegendBounds) Match(x float64) (trait.Value, bool) {
	for i, v := range b.order {
		key := v.String()
		lower, upper := b.Lower[key], b.Upper[key]
		if x < lower {
			continue
		}
		if x < upper || (i == len(b.order)-1 && x == upper) {
			return v, true
		}
	}
	return trait.Missing, false
}
