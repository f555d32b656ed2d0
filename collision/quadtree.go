package collision

import "github.com/jakecoffman/cp"

const (
	DefaultMaxObjects = 8
	DefaultMaxDepth   = 6
)

type quadEntry struct {
	c  *Collider
	bb cp.BB
}

// QuadTree is a region quadtree over axis-aligned bounds. A collider whose
// bounds straddle quadrants is stored in every leaf it overlaps, so queries
// may return duplicates but never miss an overlapping collider.
//
// Trees are built, queried and dropped within a single tick.
type QuadTree struct {
	bounds     cp.BB
	depth      int
	maxObjects int
	maxDepth   int
	entries    []quadEntry
	children   *[4]*QuadTree
	inserted   int
}

func NewQuadTree(bounds cp.BB, maxObjects, maxDepth int) *QuadTree {
	if maxObjects <= 0 {
		maxObjects = DefaultMaxObjects
	}
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	return &QuadTree{bounds: bounds, maxObjects: maxObjects, maxDepth: maxDepth}
}

func (q *QuadTree) Bounds() cp.BB {
	return q.bounds
}

// Insert stores c in every leaf its bounds overlap. Colliders outside the
// root bounds are ignored.
func (q *QuadTree) Insert(c *Collider) {
	bb := c.AABB()
	if !q.bounds.Intersects(bb) {
		return
	}
	q.inserted++
	q.insert(quadEntry{c: c, bb: bb})
}

func (q *QuadTree) insert(e quadEntry) {
	if !q.bounds.Intersects(e.bb) {
		return
	}
	if q.children != nil {
		for _, child := range q.children {
			if child.bounds.Intersects(e.bb) {
				child.insert(e)
			}
		}
		return
	}

	q.entries = append(q.entries, e)
	if len(q.entries) > q.maxObjects && q.depth < q.maxDepth {
		q.split()
	}
}

// split creates the four quadrant children and pushes held entries down.
// Entries that no child accepts stay on this node.
func (q *QuadTree) split() {
	mid := q.bounds.Center()
	b := q.bounds
	quads := [4]cp.BB{
		{L: b.L, B: b.B, R: mid.X, T: mid.Y},
		{L: mid.X, B: b.B, R: b.R, T: mid.Y},
		{L: b.L, B: mid.Y, R: mid.X, T: b.T},
		{L: mid.X, B: mid.Y, R: b.R, T: b.T},
	}
	var children [4]*QuadTree
	for i, bb := range quads {
		children[i] = &QuadTree{
			bounds:     bb,
			depth:      q.depth + 1,
			maxObjects: q.maxObjects,
			maxDepth:   q.maxDepth,
		}
	}
	q.children = &children

	kept := q.entries[:0]
	for _, e := range q.entries {
		routed := false
		for _, child := range q.children {
			if child.bounds.Intersects(e.bb) {
				child.insert(e)
				routed = true
			}
		}
		if !routed {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = quadEntry{}
	}
	q.entries = kept
}

// Retrieve appends every collider stored in nodes the query overlaps.
func (q *QuadTree) Retrieve(query cp.BB, out []*Collider) []*Collider {
	if !q.bounds.Intersects(query) {
		return out
	}
	return q.retrieve(query, out)
}

func (q *QuadTree) retrieve(query cp.BB, out []*Collider) []*Collider {
	if q.children != nil {
		for _, child := range q.children {
			if child.bounds.Intersects(query) {
				out = child.retrieve(query, out)
			}
		}
	}
	for _, e := range q.entries {
		out = append(out, e.c)
	}
	return out
}

// Len returns the number of colliders accepted by Insert.
func (q *QuadTree) Len() int {
	return q.inserted
}

// Depth returns the depth of the deepest node.
func (q *QuadTree) Depth() int {
	if q.children == nil {
		return q.depth
	}
	d := q.depth
	for _, child := range q.children {
		if cd := child.Depth(); cd > d {
			d = cd
		}
	}
	return d
}

// Clear drops all entries and children, keeping the bounds.
func (q *QuadTree) Clear() {
	q.entries = nil
	q.children = nil
	q.inserted = 0
}
