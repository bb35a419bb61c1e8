// Package ordering produces the cut sequence for a set of descriptors.
// The order respects parent/child nesting, so a shape nested inside
// another is always cut before the shape enclosing it: once the outer
// contour is severed the piece can drop from the bed, taking any uncut
// interior geometry with it. Within that constraint the sort groups
// spatially close cuts to reduce rapid travel, and can optionally
// disperse open cuts across the sheet for heat-sensitive materials.
package ordering

import (
	"cmp"
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/chazu/beamcut/pkg/classify"
	"github.com/chazu/beamcut/pkg/kernel"
)

// DefaultGroupSize is the number of round-robin groups used by the
// dispersal sort.
const DefaultGroupSize = 5

// rectEpsilon pads degenerate bounding boxes (points, axis-aligned
// lines) so they form valid R-tree rectangles.
const rectEpsilon = 1e-9

// Options control the sort.
type Options struct {
	// Disperse interleaves open cuts into round-robin groups across the
	// sheet instead of sweeping linearly, spreading heat input for
	// materials such as acrylic. Slower, but reduces local warping.
	Disperse bool

	// GroupSize is the number of dispersal groups. Zero means
	// DefaultGroupSize.
	GroupSize int
}

// Sort returns the full cut order for descs. The input slice is not
// modified; descriptors are never mutated, only re-referenced.
//
// The algorithm discovers outer shapes first (closed curves by area
// descending, then open curves), walks each one depth-first through the
// containment relation recording parents before children, and finally
// reverses the whole sequence so that nested shapes come out strictly
// before the shapes that contain them.
func Sort(k kernel.Kernel, descs []*classify.Descriptor, opts Options) []*classify.Descriptor {
	var closed, open []*classify.Descriptor
	for _, d := range descs {
		if d.Closed {
			closed = append(closed, d)
		} else {
			open = append(open, d)
		}
	}

	// Largest areas first so outer shapes become traversal roots.
	// Ties break on the full (x, y) start pair for determinism.
	slices.SortStableFunc(closed, func(a, b *classify.Descriptor) int {
		if c := cmp.Compare(b.Area, a.Area); c != 0 {
			return c
		}
		return startDesc(a, b)
	})

	slices.SortStableFunc(open, startDesc)
	if opts.Disperse {
		open = disperse(open, opts.GroupSize)
	}

	working := make([]*classify.Descriptor, 0, len(descs))
	working = append(working, closed...)
	working = append(working, open...)

	index := buildIndex(working)
	pos := make(map[*classify.Descriptor]int, len(working))
	for i, d := range working {
		pos[d] = i
	}
	visited := make(map[*classify.Descriptor]bool, len(working))
	order := make([]*classify.Descriptor, 0, len(working))

	// Pop each unvisited head as a root and walk depth-first, parents
	// recorded before children. An explicit stack avoids recursion
	// limits on deeply nested geometry.
	for _, root := range working {
		if visited[root] {
			continue
		}
		stack := []*classify.Descriptor{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[n] {
				continue
			}
			visited[n] = true
			order = append(order, n)

			ch := children(k, index, pos, n, visited)
			// Push in reverse so children pop in master-list order.
			for i := len(ch) - 1; i >= 0; i-- {
				if !visited[ch[i]] {
					stack = append(stack, ch[i])
				}
			}
		}
	}

	slices.Reverse(order)
	return order
}

// startDesc orders by start point, largest (x, y) first. Both
// coordinates always participate so the order is fully deterministic.
func startDesc(a, b *classify.Descriptor) int {
	if c := cmp.Compare(b.Start.X, a.Start.X); c != 0 {
		return c
	}
	return cmp.Compare(b.Start.Y, a.Start.Y)
}

// disperse interleaves descs into k round-robin groups and concatenates
// them, so consecutive cuts land far apart on the sheet.
func disperse(descs []*classify.Descriptor, k int) []*classify.Descriptor {
	if k <= 0 {
		k = DefaultGroupSize
	}
	if len(descs) <= k {
		return descs
	}
	groups := make([][]*classify.Descriptor, k)
	for i, d := range descs {
		groups[i%k] = append(groups[i%k], d)
	}
	out := make([]*classify.Descriptor, 0, len(descs))
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// spatialItem adapts a descriptor's bounding box to the R-tree.
type spatialItem struct {
	d    *classify.Descriptor
	rect rtreego.Rect
}

func (s *spatialItem) Bounds() rtreego.Rect { return s.rect }

func rectOf(b kernel.BBox) rtreego.Rect {
	lengths := []float64{
		max(b.MaxX-b.MinX, rectEpsilon),
		max(b.MaxY-b.MinY, rectEpsilon),
	}
	r, err := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, lengths)
	if err != nil {
		panic("ordering: invalid descriptor bounds: " + err.Error())
	}
	return r
}

// buildIndex loads every descriptor's bounds into an R-tree so that
// containment candidates can be narrowed to box-overlapping descriptors
// instead of scanning the whole set per parent.
func buildIndex(descs []*classify.Descriptor) *rtreego.Rtree {
	tree := rtreego.NewTree(2, 2, 8)
	for _, d := range descs {
		tree.Insert(&spatialItem{d: d, rect: rectOf(d.Bounds)})
	}
	return tree
}

// children returns the not-yet-visited descriptors contained in parent,
// in master-list order. That order puts larger closed areas first, so a
// containment chain is always walked outermost-first and grandchildren
// cannot be adopted past their true parent.
//
// Containment rule: a closed candidate is a child iff the kernel
// reports it fully inside the parent. An open candidate is a child iff
// its bounding box is strictly inside the parent's box on all four
// bounds; true open-curve containment is not checked, so a concave
// parent can misclassify an open candidate. This approximation is
// carried over deliberately from the long-serving production behavior.
// Open parents have no children.
func children(k kernel.Kernel, index *rtreego.Rtree, pos map[*classify.Descriptor]int, parent *classify.Descriptor, visited map[*classify.Descriptor]bool) []*classify.Descriptor {
	if !parent.Closed {
		return nil
	}

	var out []*classify.Descriptor
	for _, hit := range index.SearchIntersect(rectOf(parent.Bounds)) {
		cand := hit.(*spatialItem).d
		if cand == parent || visited[cand] {
			continue
		}
		if cand.Closed {
			if k.Containment(parent.Curve, cand.Curve) == kernel.ChildInsideParent {
				out = append(out, cand)
			}
		} else if parent.Bounds.ContainsStrict(cand.Bounds) {
			out = append(out, cand)
		}
	}

	slices.SortFunc(out, func(a, b *classify.Descriptor) int {
		return cmp.Compare(pos[a], pos[b])
	})
	return out
}
