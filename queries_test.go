package collider2d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestQueryPointFindsContainingCollider(t *testing.T) {
	w := NewWorld(testConfig())
	w.BeginFrame()
	mask := simpleMask()
	id := w.PushAABB(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 1}, mgl32.Vec2{0, 0}, mask, 5, true)
	w.EndFrame()

	hits := w.QueryPoint(mgl32.Vec2{0.5, 0.5}, mask)
	require.Len(t, hits, 1)
	require.Equal(t, id, hits[0].ID)
	require.True(t, hits[0].HasKey)
	require.Equal(t, uint64(5), hits[0].UserKey)

	require.Empty(t, w.QueryPoint(mgl32.Vec2{10, 10}, mask))
}

func TestQueryAABBFindsOverlappingCircle(t *testing.T) {
	w := NewWorld(testConfig())
	w.BeginFrame()
	mask := simpleMask()
	w.PushCircle(mgl32.Vec2{2, 0}, 1, mgl32.Vec2{0, 0}, mask, 0, false)
	w.EndFrame()

	hits := w.QueryAABB(mgl32.Vec2{0, 0}, mgl32.Vec2{1.5, 1.5}, mask)
	require.Len(t, hits, 1)
}

func TestQueryCircleFindsOverlappingAABB(t *testing.T) {
	w := NewWorld(testConfig())
	w.BeginFrame()
	mask := simpleMask()
	w.PushAABB(mgl32.Vec2{1, 0}, mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{0, 0}, mask, 0, false)
	w.EndFrame()

	hits := w.QueryCircle(mgl32.Vec2{0, 0}, 1, mask)
	require.Len(t, hits, 1)
}

func TestQueriesRespectMaskConsent(t *testing.T) {
	w := NewWorld(testConfig())
	w.BeginFrame()
	blocked := LayerMask{Layer: 1, CollidesWith: 2}
	w.PushAABB(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 1}, mgl32.Vec2{0, 0}, blocked, 0, false)
	w.EndFrame()

	probe := LayerMask{Layer: 1, CollidesWith: 1}
	require.Empty(t, w.QueryPoint(mgl32.Vec2{0, 0}, probe))
}

func TestRaycastRespectsMutualConsentRegardlessOfConfig(t *testing.T) {
	cfg := testConfig()
	cfg.RequireMutualConsent = false
	w := NewWorld(cfg)
	w.BeginFrame()
	oneWay := LayerMask{Layer: 1, CollidesWith: 2}
	w.PushAABB(mgl32.Vec2{5, 0}, mgl32.Vec2{1, 1}, mgl32.Vec2{0, 0}, oneWay, 0, false)
	w.EndFrame()

	probe := LayerMask{Layer: 2, CollidesWith: 0}
	_, ok := w.Raycast(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, probe, 100)
	require.False(t, ok, "raycast must hardcode mutual consent even when RequireMutualConsent is false")
}
