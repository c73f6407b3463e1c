package ledger

import (
	"github.com/dexhavrelock-sketch/oil-management/internal/config"
)

// Production is the derived per-tick yield. Recomputed each tick, never
// stored.
type Production struct {
	Cash    int64 `json:"cash"`
	Plastic int64 `json:"plastic"`
	Gas     int64 `json:"gas"`
}

// TotalUnits is the number of production units available to back
// refineries: all rigs across tiers plus mini rigs.
func (l *Ledger) TotalUnits() int64 {
	var total int64
	for _, n := range l.OwnedRigs {
		total += n
	}
	return total + l.OwnedMiniRigs
}

// ActiveRefineries reports how many plastic and gas refineries can run.
// Each refinery borrows one unit of rig capacity; plastic refineries claim
// capacity first, gas refineries take what remains.
func (l *Ledger) ActiveRefineries() (plastic, gas int64) {
	total := l.TotalUnits()
	plastic = min(l.OwnedRefineries, total)
	gas = min(l.OwnedGasRefineries, total-plastic)
	return plastic, gas
}

// ProductionPerSecond derives one income tick's yield from the owned units
// and the effective price multiplier. Refinery operation costs cash: each
// active refinery forfeits one mini rig's worth of production.
func (l *Ledger) ProductionPerSecond(cfg config.Balance, multiplier int64) Production {
	var base int64
	for i, n := range l.OwnedRigs {
		if i < len(cfg.RigTiers) {
			base += n * cfg.RigTiers[i].ProductionRate
		}
	}
	base += l.OwnedMiniRigs * cfg.MiniRigProductionRate

	activePlastic, activeGas := l.ActiveRefineries()
	refineryCost := (activePlastic + activeGas) * cfg.MiniRigProductionRate
	cash := max(0, base-refineryCost)

	return Production{
		Cash:    cash * multiplier,
		Plastic: activePlastic,
		Gas:     activeGas,
	}
}

// ApplyProduction credits one tick's derived yield.
func (l *Ledger) ApplyProduction(p Production) {
	if p.Cash > 0 {
		l.Cash += p.Cash
	}
	if p.Plastic > 0 {
		l.Plastic += p.Plastic
	}
	if p.Gas > 0 {
		l.Gas += p.Gas
	}
}

// GasStationUnitPrice is the station sale price for one gas unit before the
// event multiplier: the manual price marked up by the station multiplier.
func GasStationUnitPrice(cfg config.Balance) int64 {
	return int64(float64(cfg.GasSellPrice) * cfg.GasStationPriceMultiplier)
}

// AutoSellGas sells up to stations*rate gas at the station price scaled by
// the multiplier. Never sells more than held. Returns units sold and cash
// earned.
func (l *Ledger) AutoSellGas(cfg config.Balance, multiplier int64) (sold, earnings int64) {
	if l.OwnedGasStations == 0 || l.Gas == 0 {
		return 0, 0
	}
	sold = min(l.Gas, l.OwnedGasStations*cfg.GasStationSellRatePerSec)
	earnings = sold * GasStationUnitPrice(cfg) * multiplier
	l.Gas -= sold
	l.Cash += earnings
	return sold, earnings
}

// GasStationIncomePerSecond is the station income ceiling shown to
// collaborators, assuming gas is available to sell.
func (l *Ledger) GasStationIncomePerSecond(cfg config.Balance, multiplier int64) int64 {
	if l.OwnedGasStations == 0 {
		return 0
	}
	return l.OwnedGasStations * cfg.GasStationSellRatePerSec * GasStationUnitPrice(cfg) * multiplier
}
