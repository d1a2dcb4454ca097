package spatial

import (
	"strconv"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	log "github.com/sirupsen/logrus"
)

// SceneEntity couples an ecs entity with its placement, the way scenes
// hand entities to systems.
type SceneEntity struct {
	*ecs.BasicEntity
	*common.SpaceComponent
}

type sceneRecord struct {
	ent    SceneEntity
	bounds Bounds
}

// SceneIndexSystem keeps an index in sync with the entities of an ecs
// world. Add it to the world next to the render and input systems; queries
// then go straight to Index from pointer-interaction code.
type SceneIndexSystem struct {
	Index Index[SceneEntity]

	tracked map[uint64]sceneRecord
}

func NewSceneIndexSystem(index Index[SceneEntity]) *SceneIndexSystem {
	return &SceneIndexSystem{Index: index, tracked: map[uint64]sceneRecord{}}
}

func (s *SceneIndexSystem) Add(e *ecs.BasicEntity, sc *common.SpaceComponent) {
	ent := SceneEntity{e, sc}
	bounds := boundsFromSpace(sc)
	if !s.Index.Insert(Item[SceneEntity]{ID: sceneID(e.ID()), Bounds: bounds, Payload: ent}) {
		log.Warnf("scene: entity %d not indexed", e.ID())
		return
	}
	s.tracked[e.ID()] = sceneRecord{ent: ent, bounds: bounds}
}

func (s *SceneIndexSystem) Remove(e ecs.BasicEntity) {
	if _, ok := s.tracked[e.ID()]; !ok {
		return
	}
	s.Index.Remove(sceneID(e.ID()))
	delete(s.tracked, e.ID())
}

// Update re-syncs bounds of entities that moved since the last frame.
func (s *SceneIndexSystem) Update(dt float32) {
	for id, rec := range s.tracked {
		bounds := boundsFromSpace(rec.ent.SpaceComponent)
		if bounds == rec.bounds {
			continue
		}
		s.Index.Update(Item[SceneEntity]{ID: sceneID(id), Bounds: bounds, Payload: rec.ent})
		rec.bounds = bounds
		s.tracked[id] = rec
	}
}

func sceneID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func boundsFromSpace(sc *common.SpaceComponent) Bounds {
	x := float64(sc.Position.X)
	y := float64(sc.Position.Y)
	return Bounds{MinX: x, MinY: y, MaxX: x + float64(sc.Width), MaxY: y + float64(sc.Height)}
}

// FromEngoAABB converts an engo world-space box.
func FromEngoAABB(a engo.AABB) Bounds {
	return Bounds{
		MinX: float64(a.Min.X),
		MinY: float64(a.Min.Y),
		MaxX: float64(a.Max.X),
		MaxY: float64(a.Max.Y),
	}
}

// ToEngoAABB converts back, narrowing to float32.
func ToEngoAABB(b Bounds) engo.AABB {
	return engo.AABB{
		Min: engo.Point{X: float32(b.MinX), Y: float32(b.MinY)},
		Max: engo.Point{X: float32(b.MaxX), Y: float32(b.MaxY)},
	}
}
