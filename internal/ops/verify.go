package ops

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dexhavrelock-sketch/oil-management/internal/config"
	"github.com/dexhavrelock-sketch/oil-management/internal/save"
	"github.com/dexhavrelock-sketch/oil-management/internal/storage"
)

// SaveReport summarizes what a data directory's save slot holds. Used by
// the restore drill to prove a backup is actually loadable, not just a
// byte-faithful copy.
type SaveReport struct {
	HasSave   bool
	Score     int64
	Savings   int64
	HighScore int64
}

// DefaultDatabaseName is the SQLite filename the server creates when no
// explicit path is configured.
const DefaultDatabaseName = "oil_management.sqlite"

// VerifySaveData opens the SQLite database in dataDir and decodes the save
// slot with full validation. A missing slot is fine; a corrupt one is an
// error, since a restored backup should never be worse than its source.
func VerifySaveData(ctx context.Context, dataDir string, cfg config.Balance) (SaveReport, error) {
	store, err := storage.OpenSQLite(filepath.Join(dataDir, DefaultDatabaseName))
	if err != nil {
		return SaveReport{}, fmt.Errorf("open restored store: %w", err)
	}
	defer store.Close()

	var rep SaveReport

	raw, ok, err := store.Get(ctx, save.SaveKey)
	if err != nil {
		return SaveReport{}, fmt.Errorf("read save slot: %w", err)
	}
	if ok {
		rec, err := save.Decode(raw, cfg)
		if err != nil {
			return SaveReport{}, fmt.Errorf("save slot does not decode: %w", err)
		}
		rep.HasSave = true
		rep.Score = rec.Score
		rep.Savings = rec.Savings
	}

	rep.HighScore = save.NewGateway(store, cfg, nil).HighScore(ctx)
	return rep, nil
}
