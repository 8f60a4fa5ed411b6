// Package scale handles color scales which map trait values to colors.
package scale

import (
	"errors"
	"sort"

	"github.com/keep94/treecolor/palette"
	"github.com/keep94/treecolor/trait"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	// Reported if a linear scale has no control points.
	ErrEmpty = errors.New("scale: No control points.")

	// Reported if domain and colors of a linear scale differ in length.
	ErrLengthMismatch = errors.New("scale: Domain and range differ in length.")

	// Reported if the control points of a linear scale are not strictly
	// increasing.
	ErrNotIncreasing = errors.New("scale: Domain not strictly increasing.")
)

// kGenericDomain spreads 9 control points evenly over [0, 1].
var kGenericDomain = []float64{
	0, 0.125, 0.25, 0.375, 0.5, 0.625, 0.75, 0.875, 1}

// Scale maps a trait value to a color string such as "#4042C7".
// Implementations are immutable and safe to call with any value.
type Scale interface {
	// Color returns the color for v.
	Color(v trait.Value) string

	// Domain returns the values of this scale in order.
	Domain() []trait.Value

	// Range returns the colors parallel to Domain.
	Range() []string
}

// Stop represents a control point in a linear scale.
type Stop struct {
	Value float64
	Color colorful.Color
}

// Linear is a continuous scale. Colors between control points are
// interpolated; values outside the control points get the color of the
// nearest end.
type Linear struct {
	stops  []Stop
	colors []string
}

// NewLinear creates a linear scale. domain holds the control points in
// strictly increasing order; colors holds the color for each control point.
func NewLinear(domain []float64, colors []string) (*Linear, error) {
	if len(domain) == 0 {
		return nil, ErrEmpty
	}
	if len(domain) != len(colors) {
		return nil, ErrLengthMismatch
	}
	stops := make([]Stop, len(domain))
	for i := range domain {
		if i > 0 && domain[i] <= domain[i-1] {
			return nil, ErrNotIncreasing
		}
		c, err := ParseColor(colors[i])
		if err != nil {
			return nil, err
		}
		stops[i] = Stop{Value: domain[i], Color: c}
	}
	copiedColors := make([]string, len(colors))
	copy(copiedColors, colors)
	return &Linear{stops: stops, colors: copiedColors}, nil
}

// MustLinear is like NewLinear except that it panics on error.
func MustLinear(domain []float64, colors []string) *Linear {
	result, err := NewLinear(domain, colors)
	if err != nil {
		panic(err)
	}
	return result
}

// Generic returns a linear scale with 9 control points spread evenly
// from min to max colored with palette.For(9). If max <= min, the scale
// has the single control point min.
func Generic(min, max float64) *Linear {
	colors := palette.For(len(kGenericDomain))
	if max <= min {
		return MustLinear([]float64{min}, colors[:1])
	}
	domain := make([]float64, len(kGenericDomain))
	for i, d := range kGenericDomain {
		domain[i] = min + d*(max-min)
	}
	// Keep max exact
	domain[len(domain)-1] = max
	result, err := NewLinear(domain, colors)
	if err != nil {
		// max - min is too small to hold 9 distinct points
		return MustLinear([]float64{min}, colors[:1])
	}
	return result
}

// Color returns the color for v. Non numeric values get the color of
// the first control point.
func (l *Linear) Color(v trait.Value) string {
	x, ok := v.Float()
	if !ok {
		return l.colors[0]
	}
	return l.At(x)
}

// At returns the color for x. If x falls between two control points, At
// blends their colors.
func (l *Linear) At(x float64) string {
	idx := l.search(x)
	if idx == len(l.stops) {
		return l.colors[idx-1]
	}
	if idx == 0 || l.stops[idx].Value == x {
		return l.colors[idx]
	}
	ratio := (x - l.stops[idx-1].Value) / (l.stops[idx].Value - l.stops[idx-1].Value)
	return l.stops[idx-1].Color.BlendRgb(l.stops[idx].Color, ratio).Clamped().Hex()
}

// Stops returns the control points of this scale.
func (l *Linear) Stops() []Stop {
	result := make([]Stop, len(l.stops))
	copy(result, l.stops)
	return result
}

func (l *Linear) Domain() []trait.Value {
	result := make([]trait.Value, len(l.stops))
	for i := range l.stops {
		result[i] = trait.Number(l.stops[i].Value)
	}
	return result
}

func (l *Linear) Range() []string {
	result := make([]string, len(l.colors))
	copy(result, l.colors)
	return result
}

func (l *Linear) search(x float64) int {
	return sort.Search(len(l.stops), func(i int) bool {
		return l.stops[i].Value >= x
	})
}

// Ordinal is a categorical scale. Values match domain entries by their
// string form. Values not in the domain get palette.Gray.
type Ordinal struct {
	domain []trait.Value
	colors []string
	index  map[string]int
}

// NewOrdinal creates an ordinal scale. Domain entry i gets
// colors[i % len(colors)]. If two domain entries have the same string
// form, only the first is kept along with its color.
func NewOrdinal(domain []trait.Value, colors []string) *Ordinal {
	result := &Ordinal{
		domain: make([]trait.Value, 0, len(domain)),
		index:  make(map[string]int, len(domain)),
	}
	if len(colors) > 0 {
		result.colors = make([]string, 0, len(domain))
	}
	for i, v := range domain {
		key := v.String()
		if _, ok := result.index[key]; ok {
			continue
		}
		result.index[key] = len(result.domain)
		result.domain = append(result.domain, v)
		if len(colors) > 0 {
			result.colors = append(result.colors, colors[i%len(colors)])
		}
	}
	return result
}

func (o *Ordinal) Color(v trait.Value) string {
	idx, ok := o.index[v.String()]
	if !ok || o.colors == nil {
		return palette.Gray
	}
	return o.colors[idx]
}

func (o *Ordinal) Domain() []trait.Value {
	result := make([]trait.Value, len(o.domain))
	copy(result, o.domain)
	return result
}

// Range returns one color for each domain entry.
func (o *Ordinal) Range() []string {
	result := make([]string, len(o.domain))
	for i := range o.domain {
		result[i] = o.Color(o.domain[i])
	}
	return result
}
