package colorscale

import (
	"github.com/keep94/treecolor/palette"
	"github.com/keep94/treecolor/scale"
	"github.com/keep94/treecolor/trait"
)

// DiscreteScale builds the scale for a categorical trait. Categories are
// ordered by how often they occur across all trees, most frequent first;
// categories occurring equally often stay in the order first seen.
// Categories such as "unknown" or "NA" are always palette.Gray. Past
// palette.Max categories, colors repeat. Values with the same string
// form, such as 1 and "1", are the same category.
func DiscreteScale(name string, trees ...*trait.Tree) *scale.Ordinal {
	var counts trait.Counts
	byKey := make(map[string]trait.Value)
	for _, t := range trees {
		for _, n := range trait.NodesOf(t) {
			value := n.Attr(name)
			if value.IsMissing() {
				continue
			}
			key := value.String()
			if first, ok := byKey[key]; ok {
				value = first
			} else {
				byKey[key] = value
			}
			counts.Add(value, 1)
		}
	}
	domain := counts.Sorted()
	colors := palette.For(len(domain))
	colorList := make([]string, len(domain))
	for i := range domain {
		if palette.IsMissingToken(domain[i].String()) {
			colorList[i] = palette.Gray
		} else {
			colorList[i] = colors[i%len(colors)]
		}
	}
	return scale.NewOrdinal(domain, colorList)
}
