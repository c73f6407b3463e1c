package drop

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/dexhavrelock-sketch/oil-management/internal/config"
)

// Drop is one clickable oil drop. Position is in percent of the play area,
// size in pixels. Lifecycle: spawned by the spawn tick, removed by player
// collection or by the expiry sweep.
type Drop struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRandom draws a drop at a uniform random position and size.
func NewRandom(rng *rand.Rand, cfg config.Balance, now time.Time) Drop {
	return Drop{
		ID:        uuid.NewString(),
		X:         rng.Float64() * 90,
		Y:         rng.Float64() * 90,
		Size:      cfg.MinDropSizePX + rng.Intn(cfg.MaxDropSizePX-cfg.MinDropSizePX+1),
		CreatedAt: now,
	}
}

// Expired reports whether the drop has outlived the configured lifespan.
func (d Drop) Expired(now time.Time, lifespan time.Duration) bool {
	return now.Sub(d.CreatedAt) > lifespan
}
