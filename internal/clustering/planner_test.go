package clustering_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabteam/poimap/internal/clustering"
	"github.com/mabteam/poimap/internal/core/domain"
)

func TestPlan_ZoomOutIsMerge(t *testing.T) {
	e := clustering.NewEngine()
	points := []domain.POI{poi("a", 37.50, 127.05), poi("b", 37.51, 127.06), poi("c", 40, 130)}

	before := e.Cluster(points, clustering.MaxZoom, world())
	after := e.Cluster(points, 8, world())
	require.Len(t, before, 3)
	require.Len(t, after, 2)

	plan := clustering.Plan(before, after)
	assert.True(t, plan.IsMerge)

	require.Len(t, plan.Old, 3)
	assert.False(t, plan.Old[0].Persists)
	assert.Equal(t, 0, plan.Old[0].Target)
	assert.Equal(t, 0, plan.Old[1].Target)
	assert.True(t, plan.Old[2].Persists)
	assert.Equal(t, 1, plan.Old[2].Target)

	require.Len(t, plan.New, 2)
	assert.True(t, plan.New[0].Created)
	assert.Equal(t, []int{0, 1}, plan.New[0].Sources)
	assert.False(t, plan.New[1].Created)

	kinds := map[clustering.TransitionKind]int{}
	for _, tr := range plan.Transitions {
		kinds[tr.Kind]++
	}
	assert.Equal(t, 2, kinds[clustering.TransitionMorph])
	assert.Equal(t, 1, kinds[clustering.TransitionPersist])
	assert.Zero(t, kinds[clustering.TransitionSplit])
}

func TestPlan_ZoomInSplits(t *testing.T) {
	e := clustering.NewEngine()
	points := []domain.POI{poi("a", 37.50, 127.05), poi("b", 37.51, 127.06)}

	before := e.Cluster(points, 8, world())
	after := e.Cluster(points, clustering.MaxZoom, world())
	require.Len(t, before, 1)
	require.Len(t, after, 2)

	plan := clustering.Plan(before, after)
	assert.False(t, plan.IsMerge)

	splits := 0
	for _, tr := range plan.Transitions {
		if tr.Kind == clustering.TransitionSplit {
			splits++
			assert.Equal(t, 0, tr.FromIndex)
			assert.Equal(t, 2, tr.FromCount)
			assert.Equal(t, 1, tr.ToCount)
		}
	}
	// The old aggregate morphs into its nearest leaf; the other leaf splits out of it.
	assert.Equal(t, 1, splits)
	for _, n := range plan.New {
		assert.True(t, n.Created)
	}
}

func TestPlan_AddToLeafIsNotMerge(t *testing.T) {
	e := clustering.NewEngine()
	leaf := []domain.POI{poi("a", 37.5, 127.05)}
	withNeighbour := append(leaf, poi("b", 37.5001, 127.0501))

	before := e.Cluster(leaf, 10, world())
	after := e.Cluster(withNeighbour, 10, world())
	require.Len(t, before, 1)
	require.Len(t, after, 1)
	assert.Equal(t, 2, after[0].MemberCount())

	plan := clustering.Plan(before, after)
	// One cluster before and one after: not a merge frame even though membership grew.
	assert.False(t, plan.IsMerge)
	assert.False(t, plan.Old[0].Persists)
	assert.Equal(t, 0, plan.Old[0].Target)
	assert.True(t, plan.New[0].Created)
	require.Len(t, plan.Transitions, 1)
	assert.Equal(t, clustering.TransitionMorph, plan.Transitions[0].Kind)
}

func TestPlan_IdenticalFramesPersist(t *testing.T) {
	e := clustering.NewEngine()
	clusters := e.Cluster(randomPOIs(100, 4), 12, world())

	plan := clustering.Plan(clusters, clusters)
	assert.False(t, plan.IsMerge)
	for i, o := range plan.Old {
		assert.True(t, o.Persists)
		assert.Equal(t, i, o.Target)
	}
	for _, tr := range plan.Transitions {
		assert.Equal(t, clustering.TransitionPersist, tr.Kind)
		assert.Equal(t, tr.From, tr.To)
	}
}

func TestPlan_EmptySides(t *testing.T) {
	snaps := []clustering.Snapshot{{ID: "a", Count: 1}, {ID: "b", Count: 1}}

	appear := clustering.PlanSnapshots(nil, snaps)
	assert.False(t, appear.IsMerge)
	assert.Empty(t, appear.Transitions)
	require.Len(t, appear.New, 2)
	assert.True(t, appear.New[0].Created)

	vanish := clustering.PlanSnapshots(snaps, nil)
	assert.True(t, vanish.IsMerge)
	assert.Empty(t, vanish.Transitions)
	for _, o := range vanish.Old {
		assert.Equal(t, -1, o.Target)
	}

	none := clustering.PlanSnapshots(nil, nil)
	assert.False(t, none.IsMerge)
	assert.Empty(t, none.Old)
	assert.Empty(t, none.New)
}
