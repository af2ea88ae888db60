package clustering

import (
	"math"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/pkg/geospatial"
)

// Snapshot is the part of a displayed marker the planner needs.
type Snapshot struct {
	ID     string          `json:"id"`
	Center domain.GeoPoint `json:"center"`
	Count  int             `json:"count"`
}

// SnapshotOf reduces clusters to planner snapshots.
func SnapshotOf(clusters []domain.Cluster) []Snapshot {
	out := make([]Snapshot, len(clusters))
	for i, c := range clusters {
		out[i] = Snapshot{ID: c.ID(), Center: c.Center, Count: c.MemberCount()}
	}
	return out
}

// TransitionKind tells the presentation layer how to animate a marker.
type TransitionKind string

const (
	// TransitionPersist moves an unchanged cluster to its (identical) new position.
	TransitionPersist TransitionKind = "persist"
	// TransitionMorph shrinks an old cluster into the new cluster it collapses into.
	TransitionMorph TransitionKind = "morph"
	// TransitionSplit grows a freshly created cluster out of the nearest old one.
	TransitionSplit TransitionKind = "split"
)

// Transition is a single marker interpolation.
type Transition struct {
	Kind      TransitionKind  `json:"kind"`
	FromIndex int             `json:"from_index"`
	ToIndex   int             `json:"to_index"`
	From      domain.GeoPoint `json:"from"`
	To        domain.GeoPoint `json:"to"`
	FromCount int             `json:"from_count"`
	ToCount   int             `json:"to_count"`
}

// OldState describes what happens to a previously displayed cluster.
// Target is the index of the new cluster it morphs into, -1 when nothing is left.
type OldState struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Persists bool   `json:"persists"`
	Target   int    `json:"target"`
}

// NewState describes where a newly displayed cluster comes from.
type NewState struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Created bool   `json:"created"`
	Sources []int  `json:"sources,omitempty"`
}

// AnimationPlan is the before/after diff driving marker animations.
//
// IsMerge is a single global flag: true when more clusters were displayed
// before than after. It selects shrink-then-fade over grow-then-appear for the
// whole frame even if individual clusters split.
type AnimationPlan struct {
	IsMerge     bool         `json:"is_merge"`
	Old         []OldState   `json:"old"`
	New         []NewState   `json:"new"`
	Transitions []Transition `json:"transitions"`
}

// Plan diffs two clustering results.
func Plan(old, new []domain.Cluster) AnimationPlan {
	return PlanSnapshots(SnapshotOf(old), SnapshotOf(new))
}

// PlanSnapshots diffs two displayed marker sets.
//
// A cluster persists when a cluster with the same identity (same membership)
// exists on the other side. Every other old cluster morphs into the new
// cluster with the nearest center; every created new cluster without an old
// cluster morphing into it splits out of the nearest old center. The
// correspondence is an animation heuristic only.
func PlanSnapshots(old, new []Snapshot) AnimationPlan {
	plan := AnimationPlan{
		IsMerge:     len(old) > len(new),
		Old:         make([]OldState, len(old)),
		New:         make([]NewState, len(new)),
		Transitions: make([]Transition, 0, len(old)+len(new)),
	}

	newByID := make(map[string]int, len(new))
	for j, n := range new {
		newByID[n.ID] = j
	}
	oldIDs := make(map[string]struct{}, len(old))
	for _, o := range old {
		oldIDs[o.ID] = struct{}{}
	}

	for j, n := range new {
		_, existed := oldIDs[n.ID]
		plan.New[j] = NewState{Index: j, ID: n.ID, Created: !existed}
	}

	for i, o := range old {
		state := OldState{Index: i, ID: o.ID, Target: -1}
		kind := TransitionMorph
		if j, ok := newByID[o.ID]; ok {
			state.Persists = true
			state.Target = j
			kind = TransitionPersist
		} else {
			state.Target = nearest(o.Center, new)
		}
		plan.Old[i] = state

		if state.Target < 0 {
			continue
		}
		target := new[state.Target]
		plan.New[state.Target].Sources = append(plan.New[state.Target].Sources, i)
		plan.Transitions = append(plan.Transitions, Transition{
			Kind:      kind,
			FromIndex: i,
			ToIndex:   state.Target,
			From:      o.Center,
			To:        target.Center,
			FromCount: o.Count,
			ToCount:   target.Count,
		})
	}

	for j, n := range new {
		if !plan.New[j].Created || len(plan.New[j].Sources) > 0 {
			continue
		}
		i := nearest(n.Center, old)
		if i < 0 {
			continue
		}
		plan.Transitions = append(plan.Transitions, Transition{
			Kind:      TransitionSplit,
			FromIndex: i,
			ToIndex:   j,
			From:      old[i].Center,
			To:        n.Center,
			FromCount: old[i].Count,
			ToCount:   n.Count,
		})
	}

	return plan
}

// nearest returns the index of the snapshot closest to p, lowest index on
// ties, or -1 for an empty set.
func nearest(p domain.GeoPoint, candidates []Snapshot) int {
	best, bestDist := -1, math.Inf(1)
	for i, c := range candidates {
		d := geospatial.MercatorDistance(p.Lat, p.Lng, c.Center.Lat, c.Center.Lng)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
