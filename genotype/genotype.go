// Package genotype parses genotype trait keys and resolves the genotype
// state of tree nodes.
package genotype

import (
	"errors"
	"strconv"
	"strings"

	"github.com/keep94/treecolor/trait"
)

const (
	// Prefix starts every genotype trait key e.g "gt-HA1_186,187"
	Prefix = "gt-"

	// Nucleotide is the protein name for nucleotide positions.
	Nucleotide = "nuc"

	// Unknown is the state of a node whose state cannot be resolved.
	Unknown = "unknown"
)

var (
	// Reported if a genotype key has no valid protein and position.
	ErrBadKey = errors.New("genotype: Bad genotype key.")
)

// Spec represents positions within one protein.
// These instances must be treated as immutable.
type Spec struct {
	// The protein or Nucleotide
	Protein string

	// 1-based positions in ascending order of appearance in the key
	Positions []int
}

// Parse parses a genotype trait key. key looks like
// "gt-HA1_186,187;HA2_12" or "gt-nuc_100" or "gt-100". geneLength maps each
// protein name, including Nucleotide, to its length. Positions outside the
// protein are dropped as are proteins missing from geneLength. Parse returns
// ErrBadKey if nothing valid remains.
func Parse(key string, geneLength map[string]int) ([]Spec, error) {
	if !strings.HasPrefix(key, Prefix) {
		return nil, ErrBadKey
	}
	var result []Spec
	for _, group := range strings.Split(key[len(Prefix):], ";") {
		spec, ok := parseGroup(strings.TrimSpace(group), geneLength)
		if ok {
			result = append(result, spec)
		}
	}
	if len(result) == 0 {
		return nil, ErrBadKey
	}
	return result, nil
}

// Annotator resolves the genotype state of nodes. Implementations must not
// modify nodes and must return the same states for the same arguments.
type Annotator interface {
	// Annotate returns the state of each node at positions within protein.
	// The returned slice is parallel to nodes.
	Annotate(nodes []*trait.Node, protein string, positions []int) []string
}

// SequenceAnnotator resolves states from the Sequences field of each node.
// The state of a node is the characters of its sequence at the requested
// positions. A node without the sequence or with a sequence too short
// has the state Unknown. The zero value is ready to use.
type SequenceAnnotator struct {
}

func (s SequenceAnnotator) Annotate(
	nodes []*trait.Node, protein string, positions []int) []string {
	result := make([]string, len(nodes))
	for i, n := range nodes {
		result[i] = sequenceState(n.Sequences[protein], positions)
	}
	return result
}

// Annotation holds the genotype state of every node of a tree for one
// genotype trait.
// These instances must be treated as immutable.
type Annotation struct {
	Spec

	// The state of each node parallel to the tree's nodes
	States []string

	tree *trait.Tree
}

// Annotate resolves the states of the nodes in tree for spec.
func Annotate(a Annotator, tree *trait.Tree, spec Spec) *Annotation {
	return &Annotation{
		Spec:   spec,
		States: a.Annotate(trait.NodesOf(tree), spec.Protein, spec.Positions),
		tree:   tree,
	}
}

// IsFor returns true if this instance holds the states of tree.
func (a *Annotation) IsFor(tree *trait.Tree) bool {
	return a.tree == tree
}

// State returns the state of node i as a trait value.
func (a *Annotation) State(i int) trait.Value {
	if i < 0 || i >= len(a.States) {
		return trait.String(Unknown)
	}
	return trait.String(a.States[i])
}

// Counts counts the states. Counts remembers the order in which it first
// sees each state.
func (a *Annotation) Counts() *trait.Counts {
	var result trait.Counts
	for _, s := range a.States {
		result.Add(trait.String(s), 1)
	}
	return &result
}

func parseGroup(group string, geneLength map[string]int) (Spec, bool) {
	protein := Nucleotide
	encoded := group
	if idx := strings.LastIndex(group, "_"); idx != -1 {
		protein = group[:idx]
		encoded = group[idx+1:]
	}
	length, ok := geneLength[protein]
	if !ok {
		return Spec{}, false
	}
	var positions []int
	for _, part := range strings.Split(encoded, ",") {
		pos, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || pos <= 0 || pos > length {
			continue
		}
		positions = append(positions, pos)
	}
	if len(positions) == 0 {
		return Spec{}, false
	}
	return Spec{Protein: protein, Positions: positions}, true
}

func sequenceState(seq string, positions []int) string {
	if seq == "" {
		return Unknown
	}
	state := make([]byte, len(positions))
	for i, pos := range positions {
		if pos > len(seq) {
			return Unknown
		}
		state[i] = seq[pos-1]
	}
	return string(state)
}
