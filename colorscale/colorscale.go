// Package colorscale computes the color scale that colors the nodes of a
// phylogenetic tree, and optionally a second tree shown beside it, by a
// trait.
package colorscale

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/keep94/treecolor/genotype"
	"github.com/keep94/treecolor/lbi"
	"github.com/keep94/treecolor/palette"
	"github.com/keep94/treecolor/scale"
	"github.com/keep94/treecolor/trait"
)

const (
	// The statistic scale spans [0, kMaxStatistic].
	kMaxStatistic = 0.7
)

var (
	// Reported if there are no color options for the requested trait.
	ErrUndeclaredTrait = errors.New("colorscale: No color options for trait.")

	// Reported if computing the statistic failed. Errors wrapping
	// ErrStatistic also wrap the error of the statistic calculator.
	ErrStatistic = errors.New("colorscale: Computing statistic failed.")
)

// Controls holds the state of the user interface that affects coloring.
type Controls struct {
	// Length of each protein by name including genotype.Nucleotide.
	// Genotype coloring is unavailable if empty.
	GeneLength map[string]int

	// The latest date in the data set e.g 2017.85
	AbsoluteDateMaxNumeric float64

	// The color scale currently in use or nil if there is none.
	ColorScale *Result
}

// Result is a computed color scale along with what is needed to draw its
// legend. A new Result is computed each time; callers must treat Result
// instances as immutable.
type Result struct {
	// Scale colors a trait value. Never nil.
	Scale scale.Scale

	// True if Scale is a linear scale over numbers.
	Continuous bool

	// The trait this scale colors by
	ColorBy string

	// Bounds for highlighting legend entries
	LegendBounds scale.LegendBounds

	// One more than the version of the previous color scale; 1 if there
	// was none.
	Version int

	// The genotype state of each node of the primary tree when coloring
	// by genotype; nil otherwise.
	Genotype *genotype.Annotation

	// Non-nil if the requested scale could not be built. Scale is then a
	// best effort linear scale over the raw values of ColorBy.
	Err error
}

// Failed returns true if the requested scale could not be built.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Calculator computes color scales. The zero value is ready to use.
type Calculator struct {
	// Resolves genotype states. nil means genotype.SequenceAnnotator.
	Annotator genotype.Annotator

	// Computes the local branching index. nil means
	// lbi.LocalBranchingIndex.
	Statistic lbi.Calculator

	// Receives warnings and errors. nil means no logging.
	Log *log.Logger
}

// Compute computes a color scale using a zero Calculator.
func Compute(
	colorBy string,
	controls *Controls,
	tree, treeToo *trait.Tree,
	metadata *Metadata) *Result {
	var c Calculator
	return c.Compute(colorBy, controls, tree, treeToo, metadata)
}

// Compute computes the color scale for coloring tree and treeToo by
// colorBy. treeToo and metadata may be nil. Compute never returns nil;
// if the requested scale cannot be built, the Err field of the returned
// Result is set. Compute computes the local branching index of tree's
// nodes when colorBy is "lbi".
func (c *Calculator) Compute(
	colorBy string,
	controls *Controls,
	tree, treeToo *trait.Tree,
	metadata *Metadata) *Result {
	if controls == nil {
		controls = &Controls{}
	}
	var options Options
	if metadata != nil {
		options = metadata.ColorOptions
	}
	result := &Result{
		ColorBy: colorBy,
		Version: nextVersion(controls.ColorScale),
	}
	if strings.HasPrefix(colorBy, genotype.Prefix) && len(controls.GeneLength) > 0 && tree.IsPopulated() {
		result.Genotype = c.annotate(colorBy, controls.GeneLength, tree)
	}
	if !tree.IsPopulated() {
		c.logf("WARN: Computing color scale for %s before tree is ready.", colorBy)
		result.Scale, result.Continuous = placeholder(), true
	} else if d, ok := options.Resolve(colorBy); !ok {
		result.Err = fmt.Errorf("%w: %s", ErrUndeclaredTrait, colorBy)
	} else {
		c.build(result, d, controls, tree, treeToo)
	}
	if result.Err != nil {
		c.logf("ERROR: %v", result.Err)
		result.Scale, result.Continuous = MinMaxScale(colorBy, tree), true
	}
	result.LegendBounds = scale.NewLegendBounds(result.Scale.Domain())
	return result
}

func (c *Calculator) build(
	result *Result,
	d Descriptor,
	controls *Controls,
	tree, treeToo *trait.Tree) {
	switch desc := d.(type) {
	case Genotype:
		if result.Genotype == nil {
			result.Scale, result.Continuous = placeholder(), true
			return
		}
		result.Scale = genotypeScale(result.Genotype)
	case Statistic:
		err := c.statistic().Compute(
			tree, controls.AbsoluteDateMaxNumeric, desc.Tau, desc.TimeWindow)
		if err != nil {
			result.Err = &statisticError{err: err}
			return
		}
		result.Scale, result.Continuous = scale.Generic(0, kMaxStatistic), true
	case ColorMap:
		result.Scale = ColorMapScale(desc, result.ColorBy, tree, treeToo)
	case Discrete:
		result.Scale = DiscreteScale(result.ColorBy, tree, treeToo)
	case Integer:
		result.Scale = IntegerScale(result.ColorBy, tree, treeToo)
	case Continuous:
		result.Scale = ContinuousScale(desc, result.ColorBy, tree, treeToo)
		result.Continuous = true
	default:
		result.Err = fmt.Errorf("%w: %s", ErrUndeclaredTrait, result.ColorBy)
	}
}

func (c *Calculator) annotate(
	colorBy string, geneLength map[string]int, tree *trait.Tree) *genotype.Annotation {
	specs, err := genotype.Parse(colorBy, geneLength)
	if err != nil {
		c.logf("WARN: %s: %v", colorBy, err)
		return nil
	}
	if len(specs) > 1 {
		c.logf("WARN: %s: Cannot deal with multiple proteins yet - using first only.", colorBy)
	}
	return genotype.Annotate(c.annotator(), tree, specs[0])
}

func (c *Calculator) annotator() genotype.Annotator {
	if c.Annotator == nil {
		return genotype.SequenceAnnotator{}
	}
	return c.Annotator
}

func (c *Calculator) statistic() lbi.Calculator {
	if c.Statistic == nil {
		return lbi.LocalBranchingIndex{}
	}
	return c.Statistic
}

func (c *Calculator) logf(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Printf(format, args...)
	}
}

// genotypeScale orders genotype states by how often they occur, most
// frequent first.
func genotypeScale(a *genotype.Annotation) *scale.Ordinal {
	return scale.NewOrdinal(a.Counts().Sorted(), palette.Genotype)
}

// placeholder is the scale used when no real scale can be computed yet.
func placeholder() *scale.Linear {
	return scale.Generic(0, 1)
}

func nextVersion(previous *Result) int {
	if previous == nil {
		return 1
	}
	return previous.Version + 1
}

type statisticError struct {
	err error
}

func (e *statisticError) Error() string {
	return fmt.Sprintf("%v: %v", ErrStatistic, e.err)
}

func (e *statisticError) Unwrap() error {
	return e.err
}

func (e *statisticError) Is(target error) bool {
	return target == ErrStatistic
}
