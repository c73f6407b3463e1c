package save

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/dexhavrelock-sketch/oil-management/internal/config"
	"github.com/dexhavrelock-sketch/oil-management/internal/storage"
)

// Durable store keys. The names predate this service and are kept so
// existing saves and the shared event slot remain readable.
const (
	SaveKey        = "oilCollectorGameSave"
	HighScoreKey   = "oilCollectorHighScore"
	GlobalEventKey = "oilCollectorGlobalEvent"
)

// Gateway reads and writes the durable save slot and the high-score
// record. Corrupt saves never fail a load; they are replaced by defaults.
type Gateway struct {
	store  storage.Store
	cfg    config.Balance
	logger *log.Logger
}

func NewGateway(store storage.Store, cfg config.Balance, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{store: store, cfg: cfg, logger: logger}
}

// Load returns the persisted record, or the default record when the slot
// is absent or structurally invalid. A corrupt slot is discarded whole; no
// partial merge.
func (g *Gateway) Load(ctx context.Context) SaveRecord {
	raw, ok, err := g.store.Get(ctx, SaveKey)
	if err != nil {
		g.logger.Printf("[save] load failed, starting fresh: %v", err)
		return Defaults(g.cfg)
	}
	if !ok {
		return Defaults(g.cfg)
	}
	rec, err := Decode(raw, g.cfg)
	if err != nil {
		g.logger.Printf("[save] corrupt save discarded: %v", err)
		_ = g.store.Delete(ctx, SaveKey)
		return Defaults(g.cfg)
	}
	return rec
}

// Save writes the full record as one atomic write, and raises the
// high-score record when the current score exceeds it.
func (g *Gateway) Save(ctx context.Context, rec SaveRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := g.store.Set(ctx, SaveKey, raw); err != nil {
		return err
	}
	return g.bumpHighScore(ctx, rec.Score)
}

// HighScore reads the persisted high score; an unreadable record counts as
// zero.
func (g *Gateway) HighScore(ctx context.Context) int64 {
	raw, ok, err := g.store.Get(ctx, HighScoreKey)
	if err != nil || !ok {
		return 0
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (g *Gateway) bumpHighScore(ctx context.Context, score int64) error {
	if score <= g.HighScore(ctx) {
		return nil
	}
	return g.store.Set(ctx, HighScoreKey, []byte(strconv.FormatInt(score, 10)))
}

// Export renders the current record as a portable save code.
func (g *Gateway) Export(rec SaveRecord) (string, error) {
	return EncodeToken(rec)
}

// Import validates a save code and, on success, overwrites durable state.
// The caller is responsible for reinitializing any in-memory mirror. On
// validation failure nothing is written.
func (g *Gateway) Import(ctx context.Context, token string) (SaveRecord, error) {
	rec, err := DecodeToken(token, g.cfg)
	if err != nil {
		return SaveRecord{}, err
	}
	if err := g.Save(ctx, rec); err != nil {
		return SaveRecord{}, err
	}
	return rec, nil
}
