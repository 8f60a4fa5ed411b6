// Package trait represents phylogenetic tree nodes and the trait values
// attached to them.
package trait

import (
	"math"
	"sort"
	"strconv"

	"github.com/keep94/consume"
)

type kind uint8

const (
	kMissing kind = iota
	kNumber
	kString
)

// Missing represents the absence of a trait value.
var Missing Value

// Value represents a single trait value which is either a number, a string,
// or missing. Value instances are comparable and may be used as map keys.
// The zero value is Missing.
type Value struct {
	k   kind
	num float64
	str string
}

// Number returns a numeric value. NaN is returned as Missing.
func Number(x float64) Value {
	if math.IsNaN(x) {
		return Missing
	}
	return Value{k: kNumber, num: x}
}

// String returns a string value.
func String(s string) Value {
	return Value{k: kString, str: s}
}

// Float returns the numeric value and true if this instance is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.k == kNumber
}

// IsMissing returns true if this instance is Missing.
func (v Value) IsMissing() bool {
	return v.k == kMissing
}

// IsNumber returns true if this instance is a number.
func (v Value) IsNumber() bool {
	return v.k == kNumber
}

// String returns this value as a string. Numbers use the shortest
// decimal form, e.g 2019 or 0.25; Missing is "undefined".
// Scales use the returned string as the lookup key.
func (v Value) String() string {
	switch v.k {
	case kNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kString:
		return v.str
	default:
		return "undefined"
	}
}

// Node is a vertex in a phylogenetic tree.
type Node struct {
	// Name of the node, e.g the strain name
	Name string

	// Trait values by trait name, e.g "country" or "num_date"
	Attrs map[string]Value

	// Sequences by protein name. "nuc" holds the nucleotide sequence.
	Sequences map[string]string

	Children []*Node
}

// Attr returns the value of a trait or Missing if this node has no value
// for it.
func (n *Node) Attr(name string) Value {
	return n.Attrs[name]
}

// SetAttr sets the value of a trait on this node.
func (n *Node) SetAttr(name string, value Value) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]Value)
	}
	n.Attrs[name] = value
}

// IsTip returns true if this node has no children.
func (n *Node) IsTip() bool {
	return len(n.Children) == 0
}

// Tree is a phylogenetic tree flattened into a node sequence.
type Tree struct {
	// All the nodes in preorder. Nodes[0] is the root.
	Nodes []*Node
}

// NewTree returns a Tree whose nodes are root and all of its
// descendants in preorder. A nil root gives a tree with no nodes.
func NewTree(root *Node) *Tree {
	var nodes []*Node
	if root != nil {
		nodes = appendPreorder(nodes, root)
	}
	return &Tree{Nodes: nodes}
}

// IsPopulated returns true if t is non-nil and has at least one node.
func (t *Tree) IsPopulated() bool {
	return t != nil && len(t.Nodes) > 0
}

// Root returns the root node or nil if t has no nodes.
func (t *Tree) Root() *Node {
	if !t.IsPopulated() {
		return nil
	}
	return t.Nodes[0]
}

// NodesOf returns the nodes of t or nil if t is nil.
func NodesOf(t *Tree) []*Node {
	if t == nil {
		return nil
	}
	return t.Nodes
}

// Values sends every non-missing value of trait name to consumer in node
// order. Values stops early if consumer can no longer consume. Consume
// receives a *Value.
func (t *Tree) Values(name string, consumer consume.Consumer) {
	if t == nil {
		return
	}
	for _, n := range t.Nodes {
		if !consumer.CanConsume() {
			return
		}
		value := n.Attr(name)
		if value.IsMissing() {
			continue
		}
		consumer.Consume(&value)
	}
}

// Distinct returns a consumer that passes a *Value on to consumer only the
// first time that value is seen.
func Distinct(consumer consume.Consumer) consume.Consumer {
	return &distinctConsumer{Consumer: consumer, seen: make(map[Value]bool)}
}

// Numbers returns a consumer that passes a *Value on to consumer only if
// it is a number.
func Numbers(consumer consume.Consumer) consume.Consumer {
	return &numberConsumer{Consumer: consumer}
}

// Counts holds how many times each trait value occurs. Counts remembers
// the order in which values were first seen.
type Counts struct {
	order  []Value
	counts map[Value]int
}

// CountValues counts the non-missing values of trait name among nodes.
func CountValues(nodes []*Node, name string) *Counts {
	result := &Counts{counts: make(map[Value]int)}
	for _, n := range nodes {
		result.Add(n.Attr(name), 1)
	}
	return result
}

// Add adds count occurrences of value. Missing values are ignored.
func (c *Counts) Add(value Value, count int) {
	if value.IsMissing() {
		return
	}
	if c.counts == nil {
		c.counts = make(map[Value]int)
	}
	if _, ok := c.counts[value]; !ok {
		c.order = append(c.order, value)
	}
	c.counts[value] += count
}

// Merge adds the counts in other to this instance. Values new to this
// instance are ordered after the ones it already has.
func (c *Counts) Merge(other *Counts) {
	if other == nil {
		return
	}
	for _, v := range other.order {
		c.Add(v, other.counts[v])
	}
}

// Count returns the count for value.
func (c *Counts) Count(value Value) int {
	return c.counts[value]
}

// Len returns the number of distinct values.
func (c *Counts) Len() int {
	return len(c.order)
}

// Values returns the distinct values in the order first seen.
func (c *Counts) Values() []Value {
	result := make([]Value, len(c.order))
	copy(result, c.order)
	return result
}

// Sorted returns the distinct values by count in descending order. Values
// with the same count stay in the order first seen.
func (c *Counts) Sorted() []Value {
	result := c.Values()
	sort.SliceStable(result, func(i, j int) bool {
		return c.counts[result[i]] > c.counts[result[j]]
	})
	return result
}

func appendPreorder(nodes []*Node, n *Node) []*Node {
	nodes = append(nodes, n)
	for _, child := range n.Children {
		nodes = appendPreorder(nodes, child)
	}
	return nodes
}

type distinctConsumer struct {
	consume.Consumer
	seen map[Value]bool
}

func (d *distinctConsumer) Consume(ptr interface{}) {
	consume.MustCanConsume(d)
	p := ptr.(*Value)
	if d.seen[*p] {
		return
	}
	d.seen[*p] = true
	d.Consumer.Consume(p)
}

type numberConsumer struct {
	consume.Consumer
}

func (n *numberConsumer) Consume(ptr interface{}) {
	consume.MustCanConsume(n)
	p := ptr.(*Value)
	if p.IsNumber() {
		n.Consumer.Consume(p)
	}
}
