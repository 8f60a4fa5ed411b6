// Package palette provides the fixed color palettes used to color trees.
package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// Max is the largest number of distinct colors For returns.
	Max = 36

	// Gray is the neutral color for missing or unknown values.
	Gray = "#DDDDDD"
)

var (
	// Genotype is the palette for genotype states. Callers cycle through
	// it when there are more states than colors.
	Genotype = []string{
		"#60AA9E", "#D9AD3D", "#5097BA", "#E67030", "#8EBC66",
		"#E59637", "#AABD52", "#DF4327", "#C4B945", "#75B681",
	}

	kAnchors = []string{
		"#4042C7", "#4274CE", "#5199B7", "#69B091", "#88BB6C",
		"#ADBD51", "#CEB541", "#E39B39", "#E56C2F",
	}

	kAnchorColors = mustParseAll(kAnchors)

	kMissingTokens = map[string]bool{
		"unknown":    true,
		"undefined":  true,
		"unassigned": true,
		"NA":         true,
		"NaN":        true,
	}
)

// For returns n colors spread evenly from blue through green to red.
// For(9) returns the 9 anchor colors of the rainbow. n greater than Max
// is treated as Max so the returned slice never has more than Max colors.
// n <= 0 returns an empty slice. Callers may modify the returned slice.
func For(n int) []string {
	if n > Max {
		n = Max
	}
	if n <= 0 {
		return []string{}
	}
	result := make([]string, n)
	if n == 1 {
		result[0] = kAnchors[0]
		return result
	}
	last := float64(len(kAnchors) - 1)
	for i := range result {
		result[i] = at(float64(i) / float64(n-1) * last)
	}
	return result
}

// IsMissingToken returns true if s is one of the values that means a trait
// is missing such as "unknown" or "NA".
func IsMissingToken(s string) bool {
	return kMissingTokens[s]
}

// at returns the color at position pos along the anchors where 0 is the
// first anchor and len(kAnchors)-1 is the last.
func at(pos float64) string {
	idx := math.Floor(pos)
	frac := pos - idx
	i := int(idx)
	if frac < 1e-9 {
		return kAnchors[i]
	}
	if frac > 1-1e-9 {
		return kAnchors[i+1]
	}
	return kAnchorColors[i].BlendHcl(kAnchorColors[i+1], frac).Clamped().Hex()
}

func mustParseAll(hexes []string) []colorful.Color {
	result := make([]colorful.Color, len(hexes))
	for i := range hexes {
		c, err := colorful.Hex(hexes[i])
		if err != nil {
			panic("palette: " + err.Error())
		}
		result[i] = c
	}
	return result
}
