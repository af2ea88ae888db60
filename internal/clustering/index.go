package clustering

import (
	"github.com/dhconnelly/rtreego"
)

// centerEntry is a cluster center stored in the R-tree.
type centerEntry struct {
	idx int
	pos rtreego.Point
}

func (e *centerEntry) Bounds() rtreego.Rect {
	return e.pos.ToRect(0)
}

// centerIndex keeps one R-tree entry per cluster, keyed by cluster slice index.
type centerIndex struct {
	tree    *rtreego.Rtree
	entries map[int]*centerEntry
}

func newCenterIndex(minChildren, maxChildren int) *centerIndex {
	return &centerIndex{
		tree:    rtreego.NewTree(2, minChildren, maxChildren),
		entries: make(map[int]*centerEntry),
	}
}

func (ci *centerIndex) insert(idx int, x, y float64) {
	e := &centerEntry{idx: idx, pos: rtreego.Point{x, y}}
	ci.entries[idx] = e
	ci.tree.Insert(e)
}

func (ci *centerIndex) remove(idx int) {
	e, ok := ci.entries[idx]
	if !ok {
		return
	}
	ci.tree.Delete(e)
	delete(ci.entries, idx)
}

// firstWithin returns the lowest cluster index whose center lies strictly
// closer than radius to (x, y).
func (ci *centerIndex) firstWithin(x, y, radius float64, dist func(x1, y1, x2, y2 float64) float64) (int, bool) {
	if radius <= 0 || ci.tree.Size() == 0 {
		return 0, false
	}

	found := -1
	for _, s := range ci.tree.SearchIntersect(rtreego.Point{x, y}.ToRect(radius)) {
		e := s.(*centerEntry)
		if found >= 0 && e.idx > found {
			continue
		}
		if dist(x, y, e.pos[0], e.pos[1]) < radius {
			found = e.idx
		}
	}
	return found, found >= 0
}
