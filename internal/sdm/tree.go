package sdm

import (
	"fmt"
	"sort"
)

// TreeParams are the CART hyperparameters exposed to the lecture.
type TreeParams struct {
	MaxDepth int // maximum depth of the tree; 0 means the default
	MinLeaf  int // minimum instances per leaf; 0 means the default
}

func (p TreeParams) withDefaults() TreeParams {
	if p.MaxDepth <= 0 {
		p.MaxDepth = 6
	}
	if p.MinLeaf <= 0 {
		p.MinLeaf = 5
	}
	return p
}

// Node is one node of a fitted decision tree. Leaves carry the presence
// fraction of their training instances; internal nodes send x[Var] < Split
// left and the rest right.
type Node struct {
	Leaf  bool
	Prob  float64
	Var   int
	Split float64
	Left  *Node
	Right *Node
}

// Tree is a CART binary classification tree split on Gini impurity.
type Tree struct {
	Params     TreeParams
	Root       *Node
	NVars      int
	Importance []float64 // impurity decrease per predictor, summed over splits
}

// NewTree creates an unfitted tree.
func NewTree(params TreeParams) *Tree {
	return &Tree{Params: params.withDefaults()}
}

// Fit grows the tree on all predictors.
func (t *Tree) Fit(ds *Dataset) error {
	rows := make([]int, ds.Len())
	for i := range rows {
		rows[i] = i
	}
	vars := make([]int, ds.NumVars())
	for i := range vars {
		vars[i] = i
	}
	return t.fit(ds, rows, vars)
}

// fit grows the tree on the given rows, considering only the given
// predictors at each split. Bagging uses this for per-member subsampling.
func (t *Tree) fit(ds *Dataset, rows, vars []int) error {
	if len(rows) == 0 {
		return fmt.Errorf("tree fit: empty training set")
	}
	if len(vars) == 0 {
		return fmt.Errorf("tree fit: no predictors")
	}
	t.Params = t.Params.withDefaults()
	t.NVars = ds.NumVars()
	t.Importance = make([]float64, ds.NumVars())
	t.Root = t.grow(ds, rows, vars, 0, len(rows))
	return nil
}

func presenceFraction(ds *Dataset, rows []int) float64 {
	n := 0
	for _, r := range rows {
		if ds.Y[r] {
			n++
		}
	}
	return float64(n) / float64(len(rows))
}

// gini returns the Gini impurity of a presence fraction.
func gini(p float64) float64 { return 2 * p * (1 - p) }

func (t *Tree) grow(ds *Dataset, rows, vars []int, depth, total int) *Node {
	p := presenceFraction(ds, rows)
	leaf := &Node{Leaf: true, Prob: p}
	if depth >= t.Params.MaxDepth || len(rows) < 2*t.Params.MinLeaf || p == 0 || p == 1 {
		return leaf
	}

	bestVar, bestSplit, bestGain := -1, 0.0, 0.0
	parent := gini(p)
	for _, v := range vars {
		split, gain, ok := t.bestSplit(ds, rows, v, parent)
		if ok && gain > bestGain {
			bestVar, bestSplit, bestGain = v, split, gain
		}
	}
	if bestVar < 0 {
		return leaf
	}

	var left, right []int
	for _, r := range rows {
		if ds.X[r][bestVar] < bestSplit {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) < t.Params.MinLeaf || len(right) < t.Params.MinLeaf {
		return leaf
	}

	t.Importance[bestVar] += bestGain * float64(len(rows)) / float64(total)

	return &Node{
		Var:   bestVar,
		Split: bestSplit,
		Left:  t.grow(ds, left, vars, depth+1, total),
		Right: t.grow(ds, right, vars, depth+1, total),
	}
}

// bestSplit scans candidate thresholds (midpoints between distinct sorted
// values) for one predictor and returns the split with the largest Gini gain.
func (t *Tree) bestSplit(ds *Dataset, rows []int, v int, parent float64) (split, gain float64, ok bool) {
	type vy struct {
		x float64
		y bool
	}
	sorted := make([]vy, len(rows))
	for i, r := range rows {
		sorted[i] = vy{ds.X[r][v], ds.Y[r]}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].x < sorted[j].x })

	totalPos := 0
	for _, s := range sorted {
		if s.y {
			totalPos++
		}
	}
	n := len(sorted)

	leftPos := 0
	for i := 1; i < n; i++ {
		if sorted[i-1].y {
			leftPos++
		}
		if sorted[i].x == sorted[i-1].x {
			continue
		}
		nl, nr := i, n-i
		if nl < t.Params.MinLeaf || nr < t.Params.MinLeaf {
			continue
		}
		pl := float64(leftPos) / float64(nl)
		pr := float64(totalPos-leftPos) / float64(nr)
		g := parent - (float64(nl)*gini(pl)+float64(nr)*gini(pr))/float64(n)
		if g > gain {
			split = (sorted[i-1].x + sorted[i].x) / 2
			gain = g
			ok = true
		}
	}
	return split, gain, ok
}

// PredictProb walks the tree to a leaf.
func (t *Tree) PredictProb(x []float64) float64 {
	n := t.Root
	for n != nil && !n.Leaf {
		if x[n.Var] < n.Split {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	if n == nil {
		return 0
	}
	return n.Prob
}

// Depth returns the depth of the fitted tree (a bare leaf has depth 0).
func (t *Tree) Depth() int {
	var depth func(n *Node) int
	depth = func(n *Node) int {
		if n == nil || n.Leaf {
			return 0
		}
		l, r := depth(n.Left), depth(n.Right)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return depth(t.Root)
}
