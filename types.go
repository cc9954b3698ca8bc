package collider2d

import "github.com/go-gl/mathgl/mgl32"

// FrameId indexes a collider in the current frame's collider table.
// It is invalidated by the next BeginFrame call.
type FrameId uint32

// TileMapRef is an opaque handle to an attached tilemap.
type TileMapRef uint32

// TileRef names a single cell within an attached tilemap.
type TileRef struct {
	Map TileMapRef
	CX  int32
	CY  int32
}

// BodyRefKind discriminates the two BodyRef variants.
type BodyRefKind uint8

const (
	BodyRefCollider BodyRefKind = iota
	BodyRefTile
)

// BodyRef is a tagged union of either a collider in the current frame
// or a tile cell in an attached tilemap. Kept POD so Event stays
// copyable and cheap to drain in bulk.
type BodyRef struct {
	Kind     BodyRefKind
	Collider FrameId
	Tile     TileRef
}

func ColliderBodyRef(id FrameId) BodyRef {
	return BodyRef{Kind: BodyRefCollider, Collider: id}
}

func TileBodyRef(t TileRef) BodyRef {
	return BodyRef{Kind: BodyRefTile, Tile: t}
}

// ColliderKind selects the shape of a ColliderDesc.
type ColliderKind uint8

const (
	KindAABB ColliderKind = iota
	KindCircle
	KindPoint
)

// ColliderDesc describes a collider pushed for the current frame.
// Immutable once pushed; frozen at EndFrame.
type ColliderDesc struct {
	Kind        ColliderKind
	Center      mgl32.Vec2
	HalfExtents mgl32.Vec2 // AABB only
	Radius      float32    // Circle only
	Mask        LayerMask
	UserKey     uint64
	HasUserKey  bool
}

// Motion is a collider's per-frame velocity; frame displacement is
// Velocity * dt.
type Motion struct {
	Velocity mgl32.Vec2
}

// LayerMask gates which colliders may interact.
type LayerMask struct {
	Layer        uint32
	CollidesWith uint32
	Exclude      uint32
}

// Allows reports whether m consents to interacting with other, ignoring
// whether other reciprocates. Mutual-consent policy is applied by the
// caller (World) by also checking other.Allows(m).
func (m LayerMask) Allows(other LayerMask) bool {
	return m.CollidesWith&other.Layer != 0 && m.Exclude&other.Layer == 0
}

// Tilemap is a static, row-major grid of solid/empty cells, owned by
// the world until detached. Nonzero bytes in Solids are solid.
type Tilemap struct {
	Origin    mgl32.Vec2
	CellSize  float32
	Width     int32
	Height    int32
	Solids    []byte
	Mask      LayerMask
	UserKey   uint64
	HasKey    bool
}

// TileMapDesc is the input to AttachTilemap.
type TileMapDesc struct {
	Origin   mgl32.Vec2
	CellSize float32
	Width    int32
	Height   int32
	Solids   []byte
	Mask     LayerMask
	UserKey  uint64
	HasKey   bool
}

// ResolutionHint carries enough information for an external resolver
// to reposition a body without re-querying the world.
type ResolutionHint struct {
	SafePos       mgl32.Vec2
	HasSafePos    bool
	StartEmbedded bool
	FullyEmbedded bool
}

// Overlap is the result of a discrete overlap test. Normal points from
// B into A and may be the zero vector in degenerate cases; Depth is
// always >= 0.
type Overlap struct {
	Normal  mgl32.Vec2
	Depth   float32
	Contact mgl32.Vec2
	Hint    ResolutionHint
}

// SweepHit is the result of a continuous sweep test or a raycast. For
// sweeps Toi is the fraction of the frame's displacement and lies in
// [0, 1] (other hits are discarded); for raycasts it is the ray
// parameter along dir and lies in [0, maxT].
type SweepHit struct {
	Toi     float32
	Normal  mgl32.Vec2
	Contact mgl32.Vec2
	Hint    ResolutionHint
}

// EventKind discriminates Event's payload.
type EventKind uint8

const (
	EventOverlap EventKind = iota
	EventSweep
)

// Event is a single emitted collision event, POD-copyable so
// DrainEvents can hand the caller a plain slice.
type Event struct {
	Kind EventKind
	A    BodyRef
	B    BodyRef

	AKey      uint64
	HasAKey   bool
	BKey      uint64
	HasBKey   bool

	Overlap    Overlap
	HasOverlap bool
	Sweep      SweepHit
	HasSweep   bool
}

// WorldConfig tunes the collision world's per-frame behaviour.
type WorldConfig struct {
	CellSize float32 `yaml:"cell_size"`
	Dt       float32 `yaml:"dt"`

	TightenSweptAABB bool `yaml:"tighten_swept_aabb"`

	EnableOverlapEvents bool `yaml:"enable_overlap_events"`
	EnableSweepEvents   bool `yaml:"enable_sweep_events"`
	MaxEvents           int  `yaml:"max_events"`

	EnableTiming bool `yaml:"enable_timing"`

	TileEps float32 `yaml:"tile_eps"`

	RequireMutualConsent bool `yaml:"require_mutual_consent"`
}

// DefaultWorldConfig returns sane defaults matching the spec's examples.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		CellSize:             1,
		Dt:                   1.0 / 60.0,
		TightenSweptAABB:     true,
		EnableOverlapEvents:  true,
		EnableSweepEvents:    true,
		MaxEvents:            4096,
		EnableTiming:         false,
		TileEps:              1e-3,
		RequireMutualConsent: true,
	}
}

// WorldStats reports a frame's broadphase/event-pipeline sizes.
type WorldStats struct {
	Entries        int
	Cells          int
	CandidatePairs int
	UniquePairs    int
}

// WorldTiming reports per-phase millisecond timings; only populated
// when WorldConfig.EnableTiming is set.
type WorldTiming struct {
	AABBBuildMs       float64
	GridBuildMs       float64
	ScanMs            float64
	NarrowphaseMs     float64
	GenerateEventsMs  float64
}
