package game

import (
	"github.com/dexhavrelock-sketch/oil-management/internal/drop"
	"github.com/dexhavrelock-sketch/oil-management/internal/ledger"
)

// Snapshot is the read model handed to collaborators for rendering:
// current quantities, derived per-second income, event state and the live
// drops. It shares nothing with the engine's internals.
type Snapshot struct {
	Cash    int64 `json:"cash"`
	Savings int64 `json:"savings"`

	OwnedRigs            []int64 `json:"owned_rigs"`
	OwnedMiniRigs        int64   `json:"owned_mini_rigs"`
	NextMiniRigCost      int64   `json:"next_mini_rig_cost"`
	Plastic              int64   `json:"plastic"`
	Gas                  int64   `json:"gas"`
	PlasticBottles       int64   `json:"plastic_bottles"`
	OwnedRefineries      int64   `json:"owned_refineries"`
	OwnedGasRefineries   int64   `json:"owned_gas_refineries"`
	OwnedGasStations     int64   `json:"owned_gas_stations"`
	OwnedBottleFactories int64   `json:"owned_bottle_factories"`
	BottleBudget         int64   `json:"bottle_budget"`

	Production       ledger.Production `json:"production"`
	GasStationIncome int64             `json:"gas_station_income"`
	Multiplier       int64             `json:"multiplier"`

	OutageActive     bool `json:"outage_active"`
	OutageRemaining  int  `json:"outage_remaining"`
	WarActive        bool `json:"war_active"`
	WarRemaining     int  `json:"war_remaining"`
	MoonRunActive    bool `json:"moon_run_active"`
	MoonRunRemaining int  `json:"moon_run_remaining"`

	InterestCountdown int   `json:"interest_countdown"`
	HighScore         int64 `json:"high_score"`
	Paused            bool  `json:"paused"`

	AdminMoneyGiven int64 `json:"admin_money_given"`
	AdminMoneyLimit int64 `json:"admin_money_limit"`

	Drops []drop.Drop `json:"drops"`
}

// Snapshot captures a consistent read-only view of the whole game state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	mult := e.multiplier()
	led := e.led.Clone()
	moon := e.moon.Current()

	return Snapshot{
		Cash:    led.Cash,
		Savings: led.Savings,

		OwnedRigs:            led.OwnedRigs,
		OwnedMiniRigs:        led.OwnedMiniRigs,
		NextMiniRigCost:      led.NextMiniRigCost(e.cfg),
		Plastic:              led.Plastic,
		Gas:                  led.Gas,
		PlasticBottles:       led.PlasticBottles,
		OwnedRefineries:      led.OwnedRefineries,
		OwnedGasRefineries:   led.OwnedGasRefineries,
		OwnedGasStations:     led.OwnedGasStations,
		OwnedBottleFactories: led.OwnedBottleFactories,
		BottleBudget:         led.BottleProductionBudget,

		Production:       led.ProductionPerSecond(e.cfg, mult),
		GasStationIncome: led.GasStationIncomePerSecond(e.cfg, mult),
		Multiplier:       mult,

		OutageActive:     e.events.OutageActive,
		OutageRemaining:  e.events.OutageRemaining,
		WarActive:        e.events.WarActive,
		WarRemaining:     e.events.WarRemaining,
		MoonRunActive:    moon.Active(now),
		MoonRunRemaining: moon.Remaining(now),

		InterestCountdown: e.interestCountdown,
		HighScore:         e.highScore,
		Paused:            e.paused,

		AdminMoneyGiven: led.AdminMoneyGiven,
		AdminMoneyLimit: led.AdminMoneyLimit,

		Drops: e.drops.List(),
	}
}
