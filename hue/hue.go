// Package hue shows color scales on hue lights. Each light can show either
// one entry of a scale's legend or the color of one tree node.
package hue

import (
	"errors"
	"math"

	"github.com/keep94/gohue"
	"github.com/keep94/gohue/actions"
	"github.com/keep94/maybe"
	"github.com/keep94/treecolor/colorscale"
	"github.com/keep94/treecolor/genotype"
	"github.com/keep94/treecolor/scale"
	"github.com/keep94/treecolor/trait"
)

// Context represents a connection to the hue bridge.
type Context interface {

	// Sets the properties for a particular light
	Set(lightId int, properties *gohue.LightProperties) (
		response []byte, err error)
}

// LightColor represents a color and brightness. The zero value means the
// light is off.
type LightColor struct {
	Color      gohue.MaybeColor
	Brightness maybe.Uint8
}

// Lights represents the color and brightness of each light by light id.
// These instances must be treated as immutable.
type Lights map[int]LightColor

// Convert converts a color such as "#5097BA" or "rgb(80, 151, 186)" to
// the CIE xy chromaticity hue lights understand and a brightness from
// the color's luminance.
func Convert(color string) (gohue.Color, maybe.Uint8, error) {
	c, err := scale.ParseColor(color)
	if err != nil {
		return gohue.Color{}, maybe.Uint8{}, err
	}
	x, y, luminance := c.Clamped().Xyy()
	return gohue.NewColor(x, y), maybe.NewUint8(brightness(luminance)), nil
}

// Legend assigns the color of the i-th legend entry of result to the
// i-th light in lightIds. Lights past the last legend entry are off.
func Legend(result *colorscale.Result, lightIds []int) (Lights, error) {
	domain := result.Scale.Domain()
	lights := make(Lights, len(lightIds))
	for i, id := range lightIds {
		if i >= len(domain) {
			lights[id] = LightColor{}
			continue
		}
		lc, err := lightColor(result.Scale.Color(domain[i]))
		if err != nil {
			return nil, err
		}
		lights[id] = lc
	}
	return lights, nil
}

// Tree colors the lights in nodeToLight which maps an index into
// tree.Nodes to a light id. Each light gets the color result gives its
// node. When result colors by genotype, the color comes from the node's
// genotype state rather than its trait value. result.Genotype only holds
// the states of the tree result was computed for. For any other tree,
// Tree resolves states from the sequences of its nodes using
// genotype.SequenceAnnotator.
func Tree(
	result *colorscale.Result,
	tree *trait.Tree,
	nodeToLight map[int]int) (Lights, error) {
	nodes := trait.NodesOf(tree)
	states := result.Genotype
	if states != nil && !states.IsFor(tree) {
		states = genotype.Annotate(
			genotype.SequenceAnnotator{}, tree, states.Spec)
	}
	lights := make(Lights, len(nodeToLight))
	for nodeIdx, id := range nodeToLight {
		if nodeIdx < 0 || nodeIdx >= len(nodes) {
			lights[id] = LightColor{}
			continue
		}
		var value trait.Value
		if states != nil {
			value = states.State(nodeIdx)
		} else {
			value = nodes[nodeIdx].Attr(result.ColorBy)
		}
		lc, err := lightColor(result.Scale.Color(value))
		if err != nil {
			return nil, err
		}
		lights[id] = lc
	}
	return lights, nil
}

// Apply sets each light to its color and brightness. Apply stops at the
// first light it fails to set.
func Apply(ctxt Context, lights Lights) error {
	for id, lc := range lights {
		if response, err := ctxt.Set(id, lightProperties(lc)); err != nil {
			return FixError(id, response, err)
		}
	}
	return nil
}

// FixError converts a response from gohue.Set() into a descriptive
// error. lightId is the lightId, rawResponse is the response from
// gohue.Set(), err is the original error from gohue.Set()
func FixError(lightId int, rawResponse []byte, err error) error {
	if err == gohue.NoSuchResourceError {
		return &actions.NoSuchLightIdError{LightId: lightId, RawResponse: rawResponse}
	}
	if len(rawResponse) > 0 {
		return errors.New(string(rawResponse))
	}
	return err
}

func lightColor(color string) (LightColor, error) {
	c, bri, err := Convert(color)
	if err != nil {
		return LightColor{}, err
	}
	return LightColor{Color: gohue.NewMaybeColor(c), Brightness: bri}, nil
}

func lightProperties(lc LightColor) *gohue.LightProperties {
	if !lc.Color.Valid && !lc.Brightness.Valid {
		return &gohue.LightProperties{On: maybe.NewBool(false)}
	}
	return &gohue.LightProperties{
		C:   lc.Color,
		Bri: lc.Brightness,
		On:  maybe.NewBool(true)}
}

func brightness(luminance float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, luminance)) * 255))
}
