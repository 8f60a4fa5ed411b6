// Package lbi computes the local branching index (LBI) of tree nodes.
// See Neher, Russell and Shraiman, eLife 2014.
package lbi

import (
	"errors"
	"fmt"
	"math"

	"github.com/keep94/treecolor/trait"
)

const (
	// Trait is the trait that receives the computed index.
	Trait = "lbi"

	// DateTrait is the trait holding the numeric date of each node
	// e.g 2016.37
	DateTrait = "num_date"
)

var (
	// Reported if the tree has no nodes.
	ErrEmptyTree = errors.New("lbi: Tree has no nodes.")

	// Reported if a node has no numeric date.
	ErrNoDates = errors.New("lbi: Node missing num_date.")

	// Reported if tau or the time window are not positive.
	ErrBadParams = errors.New("lbi: tau and time window must be positive.")
)

// Calculator computes a statistic over the nodes of a tree and stores it
// on each node. Implementations must leave the nodes untouched when they
// return an error.
type Calculator interface {
	// Compute computes the statistic. maxDate is the latest date in the
	// data set; tau and timeWindow are in years.
	Compute(tree *trait.Tree, maxDate, tau, timeWindow float64) error
}

// LocalBranchingIndex computes the LBI of every node and stores it in
// the Trait trait normalized so that the largest LBI is 1.
// Branch lengths are the difference in DateTrait between a node and its
// parent. Only branches leading to tips sampled within timeWindow of
// maxDate contribute. A maxDate of 0 means the latest date in the tree.
// The zero value is ready to use.
type LocalBranchingIndex struct {
}

func (l LocalBranchingIndex) Compute(
	tree *trait.Tree, maxDate, tau, timeWindow float64) error {
	if !tree.IsPopulated() {
		return ErrEmptyTree
	}
	if tau <= 0 || timeWindow <= 0 {
		return ErrBadParams
	}
	nodes := tree.Nodes
	dates := make([]float64, len(nodes))
	latest := math.Inf(-1)
	for i, n := range nodes {
		date, ok := n.Attr(DateTrait).Float()
		if !ok {
			return fmt.Errorf("%w: %q", ErrNoDates, n.Name)
		}
		dates[i] = date
		latest = math.Max(latest, date)
	}
	if maxDate == 0 {
		maxDate = latest
	}
	parents := parentIndexes(nodes)

	// Nodes are in preorder so walking backwards visits children before
	// their parents.
	alive := make([]bool, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].IsTip() {
			alive[i] = dates[i] >= maxDate-timeWindow
		}
		if alive[i] && parents[i] >= 0 {
			alive[parents[i]] = true
		}
	}
	decay := make([]float64, len(nodes))
	branch := make([]float64, len(nodes))
	for i := range nodes {
		if parents[i] < 0 {
			continue
		}
		length := math.Max(0, dates[i]-dates[parents[i]])
		decay[i] = math.Exp(-length / tau)
		if alive[i] {
			branch[i] = tau * (1 - decay[i])
		}
	}

	// up[i] is the message node i sends its parent; fromChildren[i] is the
	// sum of the messages node i receives from its children.
	up := make([]float64, len(nodes))
	fromChildren := make([]float64, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		if parents[i] < 0 {
			continue
		}
		up[i] = decay[i]*fromChildren[i] + branch[i]
		fromChildren[parents[i]] += up[i]
	}

	// down[i] is the message node i receives from its parent.
	down := make([]float64, len(nodes))
	for i := range nodes {
		p := parents[i]
		if p < 0 {
			continue
		}
		down[i] = decay[i]*(down[p]+fromChildren[p]-up[i]) + branch[i]
	}

	values := make([]float64, len(nodes))
	largest := 0.0
	for i := range nodes {
		values[i] = down[i] + fromChildren[i]
		largest = math.Max(largest, values[i])
	}
	for i, n := range nodes {
		if largest > 0 {
			values[i] /= largest
		}
		n.SetAttr(Trait, trait.Number(values[i]))
	}
	return nil
}

// parentIndexes returns the index of each node's parent or -1 for nodes
// without a parent among nodes.
func parentIndexes(nodes []*trait.Node) []int {
	index := make(map[*trait.Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}
	result := make([]int, len(nodes))
	for i := range result {
		result[i] = -1
	}
	for i, n := range nodes {
		for _, child := range n.Children {
			if childIdx, ok := index[child]; ok {
				result[childIdx] = i
			}
		}
	}
	return result
}
