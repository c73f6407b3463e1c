package save

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dexhavrelock-sketch/oil-management/internal/config"
	"github.com/dexhavrelock-sketch/oil-management/internal/ledger"
)

// ErrInvalidRecord reports a persisted or imported record that fails
// structural validation. Durable state is never mutated on this error.
var ErrInvalidRecord = errors.New("invalid save record")

// SaveRecord is the canonical persisted shape. Field names match the wire
// format of existing saves, so old records and export codes stay loadable.
type SaveRecord struct {
	Score                  int64   `json:"score"`
	Savings                int64   `json:"savings"`
	OwnedRigs              []int64 `json:"ownedRigs"`
	OwnedMiniRigs          int64   `json:"ownedMiniRigs"`
	AdminMoneyGiven        int64   `json:"adminMoneyGiven"`
	AdminMoneyLimit        int64   `json:"adminMoneyLimit"`
	Plastic                int64   `json:"plastic"`
	OwnedRefineries        int64   `json:"ownedRefineries"`
	PlasticBottles         int64   `json:"plasticBottles"`
	OwnedBottleFactories   int64   `json:"ownedBottleFactories"`
	BottleProductionBudget int64   `json:"bottleProductionBudget"`
	Gas                    int64   `json:"gas"`
	OwnedGasRefineries     int64   `json:"ownedGasRefineries"`
	OwnedGasStations       int64   `json:"ownedGasStations"`
}

// Defaults is the record a fresh session starts from, and the substitute
// for corrupt saves.
func Defaults(cfg config.Balance) SaveRecord {
	return SaveRecord{
		OwnedRigs:       make([]int64, cfg.TierCount()),
		AdminMoneyLimit: cfg.AdminMoneyLimit,
	}
}

// FromLedger snapshots a ledger into its persisted shape.
func FromLedger(l *ledger.Ledger) SaveRecord {
	c := l.Clone()
	return SaveRecord{
		Score:                  c.Cash,
		Savings:                c.Savings,
		OwnedRigs:              c.OwnedRigs,
		OwnedMiniRigs:          c.OwnedMiniRigs,
		AdminMoneyGiven:        c.AdminMoneyGiven,
		AdminMoneyLimit:        c.AdminMoneyLimit,
		Plastic:                c.Plastic,
		OwnedRefineries:        c.OwnedRefineries,
		PlasticBottles:         c.PlasticBottles,
		OwnedBottleFactories:   c.OwnedBottleFactories,
		BottleProductionBudget: c.BottleProductionBudget,
		Gas:                    c.Gas,
		OwnedGasRefineries:     c.OwnedGasRefineries,
		OwnedGasStations:       c.OwnedGasStations,
	}
}

// ToLedger materializes the record as a live ledger.
func (r SaveRecord) ToLedger() *ledger.Ledger {
	rigs := make([]int64, len(r.OwnedRigs))
	copy(rigs, r.OwnedRigs)
	return &ledger.Ledger{
		Cash:                   r.Score,
		Savings:                r.Savings,
		OwnedRigs:              rigs,
		OwnedMiniRigs:          r.OwnedMiniRigs,
		AdminMoneyGiven:        r.AdminMoneyGiven,
		AdminMoneyLimit:        r.AdminMoneyLimit,
		Plastic:                r.Plastic,
		OwnedRefineries:        r.OwnedRefineries,
		PlasticBottles:         r.PlasticBottles,
		OwnedBottleFactories:   r.OwnedBottleFactories,
		BottleProductionBudget: r.BottleProductionBudget,
		Gas:                    r.Gas,
		OwnedGasRefineries:     r.OwnedGasRefineries,
		OwnedGasStations:       r.OwnedGasStations,
	}
}

// rawRecord is the tolerant decode shape: pointers distinguish absent
// fields from zeroes so legacy saves without the newer fields still load.
type rawRecord struct {
	Score                  *int64   `json:"score"`
	Savings                *int64   `json:"savings"`
	OwnedRigs              *[]int64 `json:"ownedRigs"`
	OwnedMiniRigs          *int64   `json:"ownedMiniRigs"`
	AdminMoneyGiven        *int64   `json:"adminMoneyGiven"`
	AdminMoneyLimit        *int64   `json:"adminMoneyLimit"`
	Plastic                *int64   `json:"plastic"`
	OwnedRefineries        *int64   `json:"ownedRefineries"`
	PlasticBottles         *int64   `json:"plasticBottles"`
	OwnedBottleFactories   *int64   `json:"ownedBottleFactories"`
	BottleProductionBudget *int64   `json:"bottleProductionBudget"`
	Gas                    *int64   `json:"gas"`
	OwnedGasRefineries     *int64   `json:"ownedGasRefineries"`
	OwnedGasStations       *int64   `json:"ownedGasStations"`
}

// Decode validates raw bytes against the current schema and maps any
// accepted legacy shape to the canonical record. Required fields must be
// present with the right type; the rig sequence must match the tier table
// length; quantities may not be negative. Missing optional fields default
// to zero, except the admin limit which defaults to the configured cap.
func Decode(data []byte, cfg config.Balance) (SaveRecord, error) {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return SaveRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	if raw.Score == nil || raw.Savings == nil || raw.OwnedRigs == nil || raw.OwnedMiniRigs == nil {
		return SaveRecord{}, fmt.Errorf("%w: missing required field", ErrInvalidRecord)
	}
	if len(*raw.OwnedRigs) != cfg.TierCount() {
		return SaveRecord{}, fmt.Errorf("%w: rig sequence length %d, want %d",
			ErrInvalidRecord, len(*raw.OwnedRigs), cfg.TierCount())
	}

	rec := Defaults(cfg)
	rec.Score = *raw.Score
	rec.Savings = *raw.Savings
	copy(rec.OwnedRigs, *raw.OwnedRigs)
	rec.OwnedMiniRigs = *raw.OwnedMiniRigs
	rec.AdminMoneyGiven = opt(raw.AdminMoneyGiven)
	if raw.AdminMoneyLimit != nil {
		rec.AdminMoneyLimit = *raw.AdminMoneyLimit
	}
	rec.Plastic = opt(raw.Plastic)
	rec.OwnedRefineries = opt(raw.OwnedRefineries)
	rec.PlasticBottles = opt(raw.PlasticBottles)
	rec.OwnedBottleFactories = opt(raw.OwnedBottleFactories)
	rec.BottleProductionBudget = opt(raw.BottleProductionBudget)
	rec.Gas = opt(raw.Gas)
	rec.OwnedGasRefineries = opt(raw.OwnedGasRefineries)
	rec.OwnedGasStations = opt(raw.OwnedGasStations)

	if err := rec.checkNonNegative(); err != nil {
		return SaveRecord{}, err
	}
	return rec, nil
}

func opt(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func (r SaveRecord) checkNonNegative() error {
	fields := []int64{
		r.Score, r.Savings, r.OwnedMiniRigs, r.AdminMoneyGiven, r.AdminMoneyLimit,
		r.Plastic, r.OwnedRefineries, r.PlasticBottles, r.OwnedBottleFactories,
		r.BottleProductionBudget, r.Gas, r.OwnedGasRefineries, r.OwnedGasStations,
	}
	for _, v := range fields {
		if v < 0 {
			return fmt.Errorf("%w: negative quantity", ErrInvalidRecord)
		}
	}
	for _, v := range r.OwnedRigs {
		if v < 0 {
			return fmt.Errorf("%w: negative rig count", ErrInvalidRecord)
		}
	}
	return nil
}

// EncodeToken renders the record as a copy/paste-safe save code.
func EncodeToken(rec SaveRecord) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeToken reverses EncodeToken and applies full structural validation.
func DecodeToken(token string, cfg config.Balance) (SaveRecord, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return SaveRecord{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return Decode(raw, cfg)
}
