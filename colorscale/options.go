package colorscale

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/keep94/treecolor/lbi"
	"github.com/keep94/treecolor/trait"
	"gopkg.in/yaml.v3"
)

var (
	// Reported if a color option cannot be understood.
	ErrBadDescriptor = errors.New("colorscale: Bad color option.")
)

// Descriptor describes how to color by one trait. The implementations
// are Continuous, Discrete, Integer, ColorMap, Statistic and Genotype.
type Descriptor interface {
	descriptor()
}

// Continuous colors by a numeric trait using a linear scale.
type Continuous struct {
	// If true, VMin and VMax fix the ends of the scale instead of the
	// values in the tree.
	HasBounds bool
	VMin      float64
	VMax      float64
}

// Discrete colors by a categorical trait ranking categories by frequency.
type Discrete struct {
}

// Integer colors by an integer trait with one color per integer when
// there are few of them.
type Integer struct {
}

// ColorMapEntry assigns a color to one trait value.
type ColorMapEntry struct {
	Value trait.Value
	Color string
}

// ColorMap colors by a categorical trait using author supplied colors.
type ColorMap struct {
	Entries []ColorMapEntry
}

// Statistic colors by the local branching index which is computed from
// the tree. Tau and TimeWindow are in years.
type Statistic struct {
	Tau        float64
	TimeWindow float64
}

// Genotype colors by the genotype state at positions in Key e.g
// "gt-HA1_186". Genotype descriptors come from the trait name itself,
// never from color options.
type Genotype struct {
	Key string
}

func (Continuous) descriptor() {}
func (Discrete) descriptor()   {}
func (Integer) descriptor()    {}
func (ColorMap) descriptor()   {}
func (Statistic) descriptor()  {}
func (Genotype) descriptor()   {}

// Options maps trait names to how to color by them.
// These instances must be treated as immutable.
type Options map[string]Descriptor

// Resolve returns how to color by colorBy. Trait names starting with
// "gt" are genotypes; "lbi" is always the statistic even if its options
// are missing in which case the returned Statistic has zero parameters.
// Resolve returns false if colorBy has no options.
func (o Options) Resolve(colorBy string) (Descriptor, bool) {
	if strings.HasPrefix(colorBy, "gt") {
		return Genotype{Key: colorBy}, true
	}
	if colorBy == lbi.Trait {
		s, _ := o[colorBy].(Statistic)
		return s, true
	}
	d, ok := o[colorBy]
	return d, ok
}

// Metadata is the part of a data set's metadata needed to color trees.
type Metadata struct {
	ColorOptions Options
}

// ParseOptions parses color options from JSON. The JSON is an object keyed
// by trait name. Each value has a "type" of "continuous", "discrete" or
// "integer" and optionally a "color_map" of [value, color] pairs which
// takes precedence over "type". Continuous traits may have "vmin" and
// "vmax". The "lbi" entry has "tau" and "timeWindow".
func ParseOptions(data []byte) (Options, error) {
	var raw map[string]*rawDescriptor
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return resolveAll(raw)
}

// ParseOptionsYAML works like ParseOptions except that it parses YAML.
func ParseOptionsYAML(data []byte) (Options, error) {
	var raw map[string]*rawDescriptor
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return resolveAll(raw)
}

type rawDescriptor struct {
	Type       string          `json:"type" yaml:"type"`
	ColorMap   [][]interface{} `json:"color_map" yaml:"color_map"`
	VMin       *float64        `json:"vmin" yaml:"vmin"`
	VMax       *float64        `json:"vmax" yaml:"vmax"`
	Tau        *float64        `json:"tau" yaml:"tau"`
	TimeWindow *float64        `json:"timeWindow" yaml:"timeWindow"`
}

func resolveAll(raw map[string]*rawDescriptor) (Options, error) {
	result := make(Options, len(raw))
	for name, r := range raw {
		if r == nil {
			return nil, fmt.Errorf("%w: %s", ErrBadDescriptor, name)
		}
		d, err := r.resolve(name)
		if err != nil {
			return nil, err
		}
		result[name] = d
	}
	return result, nil
}

func (r *rawDescriptor) resolve(name string) (Descriptor, error) {
	if r.ColorMap != nil {
		return r.colorMap(name)
	}
	if r.Type == "" && (r.Tau != nil || r.TimeWindow != nil || name == lbi.Trait) {
		if r.Tau == nil || r.TimeWindow == nil {
			return nil, fmt.Errorf(
				"%w: %s needs tau and timeWindow", ErrBadDescriptor, name)
		}
		return Statistic{Tau: *r.Tau, TimeWindow: *r.TimeWindow}, nil
	}
	switch r.Type {
	case "continuous":
		var result Continuous
		if r.VMin != nil && r.VMax != nil {
			result = Continuous{HasBounds: true, VMin: *r.VMin, VMax: *r.VMax}
		}
		return result, nil
	case "discrete":
		return Discrete{}, nil
	case "integer":
		return Integer{}, nil
	}
	return nil, fmt.Errorf(
		"%w: %s has type %q", ErrBadDescriptor, name, r.Type)
}

func (r *rawDescriptor) colorMap(name string) (Descriptor, error) {
	entries := make([]ColorMapEntry, len(r.ColorMap))
	for i, pair := range r.ColorMap {
		if len(pair) != 2 {
			return nil, fmt.Errorf(
				"%w: %s color_map entry %d", ErrBadDescriptor, name, i)
		}
		value, ok := toValue(pair[0])
		color, isString := pair[1].(string)
		if !ok || !isString {
			return nil, fmt.Errorf(
				"%w: %s color_map entry %d", ErrBadDescriptor, name, i)
		}
		entries[i] = ColorMapEntry{Value: value, Color: color}
	}
	return ColorMap{Entries: entries}, nil
}

func toValue(x interface{}) (trait.Value, bool) {
	switch v := x.(type) {
	case string:
		return trait.String(v), true
	case float64:
		return trait.Number(v), true
	case int:
		return trait.Number(float64(v)), true
	case int64:
		return trait.Number(float64(v)), true
	case bool:
		if v {
			return trait.String("true"), true
		}
		return trait.String("false"), true
	}
	return trait.Missing, false
}
