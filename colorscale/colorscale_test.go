package colorscale_test

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/keep94/treecolor/colorscale"
	"github.com/keep94/treecolor/genotype"
	"github.com/keep94/treecolor/lbi"
	"github.com/keep94/treecolor/palette"
	"github.com/keep94/treecolor/scale"
	"github.com/keep94/treecolor/trait"
	asserts "github.com/stretchr/testify/assert"
)

var (
	kMetadata = &colorscale.Metadata{
		ColorOptions: colorscale.Options{
			"age":     colorscale.Continuous{},
			"country": colorscale.Discrete{},
			"clade":   colorscale.Integer{},
			"region": colorscale.ColorMap{Entries: []colorscale.ColorMapEntry{
				{Value: trait.String("asia"), Color: "#5097BA"},
			}},
			"lbi": colorscale.Statistic{Tau: 0.4, TimeWindow: 0.5},
		},
	}
	kErrStatisticForTesting = errors.New("statistic failed")
)

func TestComputeNotReady(t *testing.T) {
	assert := asserts.New(t)
	for _, tree := range []*trait.Tree{nil, trait.NewTree(nil)} {
		result := colorscale.Compute("country", nil, tree, nil, kMetadata)
		assert.True(result.Continuous)
		assert.False(result.Failed())
		assert.Equal(scale.Generic(0, 1).Domain(), result.Scale.Domain())
		assert.Equal(1, result.Version)
		assert.Equal("country", result.ColorBy)
	}
}

func TestComputeVersion(t *testing.T) {
	tree := stringTree("country", "usa", "china")
	controls := &colorscale.Controls{}
	first := colorscale.Compute("country", controls, tree, nil, kMetadata)
	controls.ColorScale = first
	second := colorscale.Compute("country", controls, tree, nil, kMetadata)
	asserts.Equal(t, 1, first.Version)
	asserts.Equal(t, first.Version+1, second.Version)
	asserts.Equal(t, first.Scale.Domain(), second.Scale.Domain())
	asserts.Equal(t, first.Scale.Range(), second.Scale.Range())
}

func TestComputeContinuous(t *testing.T) {
	assert := asserts.New(t)
	result := colorscale.Compute(
		"age", nil, numericTree("age", 1, 2, 3), numericTree("age", 4), kMetadata)
	assert.True(result.Continuous)
	assert.False(result.Failed())
	assert.Equal(numbers(1, 2, 3, 4), result.Scale.Domain())
	assert.Equal(math.Inf(-1), result.LegendBounds.Lower["1"])
	assert.Equal(1.0, result.LegendBounds.Upper["1"])
	assert.Equal(3.0, result.LegendBounds.Lower["4"])
	assert.Equal(math.Inf(1), result.LegendBounds.Upper["4"])
}

func TestComputeDiscrete(t *testing.T) {
	assert := asserts.New(t)
	result := colorscale.Compute(
		"country",
		nil,
		stringTree("country", "usa", "china", "usa"),
		stringTree("country", "china", "china"),
		kMetadata)
	assert.False(result.Continuous)
	assert.Equal(
		[]trait.Value{trait.String("china"), trait.String("usa")},
		result.Scale.Domain())
	assert.Equal(0, result.LegendBounds.Len())
	assert.Nil(result.Genotype)
}

func TestComputeDiscreteNumbers(t *testing.T) {
	assert := asserts.New(t)
	metadata := &colorscale.Metadata{
		ColorOptions: colorscale.Options{"year": colorscale.Discrete{}},
	}
	result := colorscale.Compute(
		"year", nil, numericTree("year", 3, 3, 3, 1, 5), nil, metadata)
	assert.False(result.Continuous)
	assert.Equal(trait.Number(3), result.Scale.Domain()[0])
	bounds := result.LegendBounds
	assert.Equal(3, bounds.Len())
	for _, x := range []float64{-10, 0.5, 1, 2, 3, 4, 5, 10} {
		count := 0
		var last string
		for _, v := range result.Scale.Domain() {
			key := v.String()
			if bounds.Lower[key] <= x && x < bounds.Upper[key] {
				count++
				last = key
			}
		}
		assert.Equal(1, count, "%v", x)
		v, ok := bounds.Match(x)
		assert.True(ok)
		assert.Equal(last, v.String())
	}
	v, _ := bounds.Match(2)
	assert.Equal(trait.Number(3), v)
	v, _ = bounds.Match(0.5)
	assert.Equal(trait.Number(1), v)
}

func TestComputeInteger(t *testing.T) {
	result := colorscale.Compute(
		"clade", nil, numericTree("clade", 1, 3), nil, kMetadata)
	asserts.False(t, result.Continuous)
	asserts.Equal(t, numbers(1, 2, 3), result.Scale.Domain())
	asserts.Equal(t, 3, result.LegendBounds.Len())
}

func TestComputeColorMap(t *testing.T) {
	assert := asserts.New(t)
	result := colorscale.Compute(
		"region", nil, stringTree("region", "europe", "asia"), nil, kMetadata)
	assert.False(result.Continuous)
	assert.Equal(
		[]trait.Value{trait.String("asia"), trait.String("europe")},
		result.Scale.Domain())
	assert.Equal("#5097BA", result.Scale.Color(trait.String("asia")))
}

func TestComputeUndeclaredTrait(t *testing.T) {
	assert := asserts.New(t)
	var buf bytes.Buffer
	calc := colorscale.Calculator{Log: log.New(&buf, "", 0)}
	result := calc.Compute(
		"height", nil, numericTree("height", 150, 170, 190), nil, kMetadata)
	assert.True(result.Continuous)
	assert.True(result.Failed())
	assert.True(errors.Is(result.Err, colorscale.ErrUndeclaredTrait))
	assert.Equal(numbers(150, 170, 190), result.Scale.Domain())
	assert.Contains(buf.String(), "ERROR:")
	for _, x := range []float64{math.Inf(-1), -1e9, 0, 160, 1e9, math.Inf(1)} {
		assert.NotEmpty(result.Scale.Color(trait.Number(x)))
	}
}

func TestComputeUndeclaredStringTrait(t *testing.T) {
	result := colorscale.Compute(
		"host", nil, stringTree("host", "human", "avian"), nil, nil)
	asserts.True(t, result.Failed())
	asserts.True(t, result.Continuous)
	asserts.Equal(t, scale.Generic(0, 1).Domain(), result.Scale.Domain())
	asserts.NotEmpty(t, result.Scale.Color(trait.Number(12)))
}

func TestComputeStatistic(t *testing.T) {
	assert := asserts.New(t)
	calc := &fakeStatistic{}
	c := colorscale.Calculator{Statistic: calc}
	controls := &colorscale.Controls{AbsoluteDateMaxNumeric: 2017.5}
	tree := stringTree("country", "usa")
	result := c.Compute("lbi", controls, tree, nil, kMetadata)
	assert.False(result.Failed())
	assert.True(result.Continuous)
	assert.Equal(scale.Generic(0, 0.7).Domain(), result.Scale.Domain())
	assert.Equal(
		fakeStatistic{
			called: true, tree: tree, maxDate: 2017.5, tau: 0.4, window: 0.5},
		*calc)
}

func TestComputeStatisticFails(t *testing.T) {
	assert := asserts.New(t)
	var buf bytes.Buffer
	c := colorscale.Calculator{
		Statistic: &fakeStatistic{err: kErrStatisticForTesting},
		Log:       log.New(&buf, "", 0),
	}
	result := c.Compute(
		"lbi", nil, stringTree("country", "usa"), nil, kMetadata)
	assert.True(result.Failed())
	assert.True(result.Continuous)
	assert.True(errors.Is(result.Err, colorscale.ErrStatistic))
	assert.True(errors.Is(result.Err, kErrStatisticForTesting))
	assert.NotNil(result.Scale)
	assert.NotEmpty(result.Scale.Color(trait.Number(0.3)))
	assert.True(strings.HasPrefix(buf.String(), "ERROR:"))
}

func TestComputeStatisticWithoutOptions(t *testing.T) {
	tree := treeWithDates()
	result := colorscale.Compute("lbi", nil, tree, nil, nil)
	asserts.True(t, result.Failed())
	asserts.True(t, errors.Is(result.Err, lbi.ErrBadParams))
}

func TestComputeStatisticDefaultCalculator(t *testing.T) {
	tree := treeWithDates()
	controls := &colorscale.Controls{AbsoluteDateMaxNumeric: 2001}
	result := colorscale.Compute("lbi", controls, tree, nil, kMetadata)
	asserts.False(t, result.Failed())
	for _, n := range tree.Nodes {
		asserts.False(t, n.Attr(lbi.Trait).IsMissing())
	}
}

func TestComputeGenotype(t *testing.T) {
	assert := asserts.New(t)
	tree := sequenceTree("HA1", "AKD", "ANE", "AKD", "AKE", "AKD")
	controls := &colorscale.Controls{
		GeneLength: map[string]int{"HA1": 3, "nuc": 9}}
	result := colorscale.Compute("gt-HA1_2", controls, tree, nil, kMetadata)
	assert.False(result.Failed())
	assert.False(result.Continuous)
	assert.Equal(
		[]trait.Value{trait.String("K"), trait.String("N")},
		result.Scale.Domain())
	assert.Equal(
		[]string{palette.Genotype[0], palette.Genotype[1]},
		result.Scale.Range())
	assert.NotNil(result.Genotype)
	assert.Equal("HA1", result.Genotype.Protein)
	assert.Equal([]int{2}, result.Genotype.Positions)
	assert.Equal(
		[]string{"K", "N", "K", "K", "K"}, result.Genotype.States)
	// Nodes are untouched
	assert.True(tree.Nodes[0].Attr("gt-HA1_2").IsMissing())
}

func TestComputeGenotypeMultipleProteins(t *testing.T) {
	var buf bytes.Buffer
	c := colorscale.Calculator{Log: log.New(&buf, "", 0)}
	tree := sequenceTree("HA1", "AKD", "ANE")
	controls := &colorscale.Controls{
		GeneLength: map[string]int{"HA1": 3, "HA2": 10}}
	result := c.Compute("gt-HA1_3;HA2_1", controls, tree, nil, nil)
	asserts.False(t, result.Failed())
	asserts.Equal(t, "HA1", result.Genotype.Protein)
	asserts.Equal(
		t,
		[]trait.Value{trait.String("D"), trait.String("E")},
		result.Scale.Domain())
	asserts.Contains(t, buf.String(), "WARN:")
}

func TestComputeGenotypeWithoutGeneLength(t *testing.T) {
	tree := sequenceTree("HA1", "AKD")
	result := colorscale.Compute("gt-HA1_2", nil, tree, nil, nil)
	asserts.True(t, result.Continuous)
	asserts.False(t, result.Failed())
	asserts.Nil(t, result.Genotype)
	asserts.Equal(t, scale.Generic(0, 1).Domain(), result.Scale.Domain())
}

func TestComputeGenotypeBadKey(t *testing.T) {
	tree := sequenceTree("HA1", "AKD")
	controls := &colorscale.Controls{GeneLength: map[string]int{"HA1": 3}}
	result := colorscale.Compute("gt-HA1_20", controls, tree, nil, nil)
	asserts.True(t, result.Continuous)
	asserts.Nil(t, result.Genotype)
}

func TestComputeGenotypeCustomAnnotator(t *testing.T) {
	tree := sequenceTree("HA1", "A", "B", "C")
	c := colorscale.Calculator{Annotator: constantAnnotator("X")}
	controls := &colorscale.Controls{GeneLength: map[string]int{"HA1": 1}}
	result := c.Compute("gt-HA1_1", controls, tree, nil, nil)
	asserts.Equal(t, []trait.Value{trait.String("X")}, result.Scale.Domain())
}

func TestResultFailed(t *testing.T) {
	asserts.False(t, (&colorscale.Result{}).Failed())
	asserts.True(
		t, (&colorscale.Result{Err: colorscale.ErrUndeclaredTrait}).Failed())
}

type fakeStatistic struct {
	called  bool
	tree    *trait.Tree
	maxDate float64
	tau     float64
	window  float64
	err     error
}

func (f *fakeStatistic) Compute(
	tree *trait.Tree, maxDate, tau, timeWindow float64) error {
	f.called = true
	f.tree = tree
	f.maxDate = maxDate
	f.tau = tau
	f.window = timeWindow
	return f.err
}

type constantAnnotator string

func (c constantAnnotator) Annotate(
	nodes []*trait.Node, protein string, positions []int) []string {
	result := make([]string, len(nodes))
	for i := range result {
		result[i] = string(c)
	}
	return result
}

var _ genotype.Annotator = constantAnnotator("")

// numericTree returns a tree whose root has no value for name and whose
// children have the given values.
func numericTree(name string, values ...float64) *trait.Tree {
	root := &trait.Node{Name: "root"}
	for _, v := range values {
		child := &trait.Node{}
		child.SetAttr(name, trait.Number(v))
		root.Children = append(root.Children, child)
	}
	return trait.NewTree(root)
}

// stringTree works like numericTree except the values are strings.
func stringTree(name string, values ...string) *trait.Tree {
	root := &trait.Node{Name: "root"}
	for _, v := range values {
		child := &trait.Node{}
		child.SetAttr(name, trait.String(v))
		root.Children = append(root.Children, child)
	}
	return trait.NewTree(root)
}

// sequenceTree returns a tree whose first sequence is the root's and the
// rest are the root's children.
func sequenceTree(protein string, sequences ...string) *trait.Tree {
	root := &trait.Node{Sequences: map[string]string{protein: sequences[0]}}
	for _, seq := range sequences[1:] {
		root.Children = append(
			root.Children,
			&trait.Node{Sequences: map[string]string{protein: seq}})
	}
	return trait.NewTree(root)
}

func treeWithDates() *trait.Tree {
	root := &trait.Node{Name: "root"}
	root.SetAttr(lbi.DateTrait, trait.Number(2000))
	for _, date := range []float64{2000.5, 2001} {
		child := &trait.Node{}
		child.SetAttr(lbi.DateTrait, trait.Number(date))
		root.Children = append(root.Children, child)
	}
	return trait.NewTree(root)
}

func numbers(xs ...float64) []trait.Value {
	result := make([]trait.Value, len(xs))
	for i := range xs {
		result[i] = trait.Number(xs[i])
	}
	return result
}
