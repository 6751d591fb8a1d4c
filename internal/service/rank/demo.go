package rank

import (
	"encoding/binary"
	"hash/fnv"

	"localvibe/internal/domain/experience"
	"localvibe/internal/domain/planner"
)

// DemoScorer produces mock "trending" intensities for demos and heat maps.
// The value is a seeded hash of the experience id, so it is stable across
// calls and process restarts for the same seed.
type DemoScorer struct {
	seed uint64
}

// NewDemoScorer creates a demo scorer for the given seed
func NewDemoScorer(seed int64) *DemoScorer {
	return &DemoScorer{seed: uint64(seed)}
}

// Score implements planner.Scorer
func (s *DemoScorer) Score(e experience.Experience, _ planner.EvalContext) float64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], s.seed)
	h.Write(buf[:])
	h.Write([]byte(e.ID))

	return float64(h.Sum64()%10000) / 100
}
