package ledger

import (
	"github.com/dexhavrelock-sketch/oil-management/internal/config"
)

// Resource identifies a sellable intermediate resource.
type Resource string

const (
	ResourcePlastic Resource = "plastic"
	ResourceGas     Resource = "gas"
	ResourceBottles Resource = "bottles"
)

// Ledger is the single owner of all resource, currency and unit counts.
// It holds no timing state and does no locking; the engine serializes all
// access to it. Invalid operations leave it untouched and report false.
type Ledger struct {
	Cash    int64 `json:"cash"`
	Savings int64 `json:"savings"`

	OwnedRigs     []int64 `json:"owned_rigs"`
	OwnedMiniRigs int64   `json:"owned_mini_rigs"`

	Plastic        int64 `json:"plastic"`
	Gas            int64 `json:"gas"`
	PlasticBottles int64 `json:"plastic_bottles"`

	OwnedRefineries        int64 `json:"owned_refineries"`
	OwnedGasRefineries     int64 `json:"owned_gas_refineries"`
	OwnedGasStations       int64 `json:"owned_gas_stations"`
	OwnedBottleFactories   int64 `json:"owned_bottle_factories"`
	BottleProductionBudget int64 `json:"bottle_production_budget"`

	AdminMoneyGiven int64 `json:"admin_money_given"`
	AdminMoneyLimit int64 `json:"admin_money_limit"`
}

// New returns a zeroed ledger sized to the configured rig tier table.
func New(cfg config.Balance) *Ledger {
	return &Ledger{
		OwnedRigs:       make([]int64, cfg.TierCount()),
		AdminMoneyLimit: cfg.AdminMoneyLimit,
	}
}

// Clone returns a deep copy, used for snapshots and save records.
func (l *Ledger) Clone() *Ledger {
	c := *l
	c.OwnedRigs = make([]int64, len(l.OwnedRigs))
	copy(c.OwnedRigs, l.OwnedRigs)
	return &c
}

// Collect rewards a clicked drop: floor(maxSize/size) scaled by the
// effective multiplier. Smaller drops are worth strictly more.
func (l *Ledger) Collect(maxSize, size int, multiplier int64) int64 {
	if size <= 0 || maxSize <= 0 {
		return 0
	}
	reward := int64(maxSize/size) * multiplier
	l.Cash += reward
	return reward
}

// BuyRig purchases one rig of the given tier index. Unaffordable or
// out-of-range purchases are no-ops.
func (l *Ledger) BuyRig(cfg config.Balance, tier int) bool {
	if tier < 0 || tier >= len(cfg.RigTiers) || tier >= len(l.OwnedRigs) {
		return false
	}
	cost := cfg.RigTiers[tier].Cost
	if l.Cash < cost {
		return false
	}
	l.Cash -= cost
	l.OwnedRigs[tier]++
	return true
}

// NextMiniRigCost is derived, never stored: base + owned*increment.
func (l *Ledger) NextMiniRigCost(cfg config.Balance) int64 {
	return cfg.MiniRigBaseCost + l.OwnedMiniRigs*cfg.MiniRigCostIncrease
}

func (l *Ledger) BuyMiniRig(cfg config.Balance) bool {
	cost := l.NextMiniRigCost(cfg)
	if l.Cash < cost {
		return false
	}
	l.Cash -= cost
	l.OwnedMiniRigs++
	return true
}

func (l *Ledger) BuyRefinery(cfg config.Balance) bool {
	return l.buyUnit(cfg.PlasticRefineryCost, &l.OwnedRefineries)
}

func (l *Ledger) BuyGasRefinery(cfg config.Balance) bool {
	return l.buyUnit(cfg.GasRefineryCost, &l.OwnedGasRefineries)
}

func (l *Ledger) BuyGasStation(cfg config.Balance) bool {
	return l.buyUnit(cfg.GasStationCost, &l.OwnedGasStations)
}

func (l *Ledger) BuyBottleFactory(cfg config.Balance) bool {
	return l.buyUnit(cfg.BottleFactoryCost, &l.OwnedBottleFactories)
}

func (l *Ledger) buyUnit(cost int64, count *int64) bool {
	if l.Cash < cost {
		return false
	}
	l.Cash -= cost
	*count++
	return true
}

// Sell exchanges amount units of a resource for amount*unitPrice cash.
// Valid only for 0 < amount <= held; otherwise a silent no-op.
func (l *Ledger) Sell(kind Resource, amount, unitPrice int64) bool {
	if amount <= 0 {
		return false
	}
	held := l.held(kind)
	if held == nil || amount > *held {
		return false
	}
	*held -= amount
	l.Cash += amount * unitPrice
	return true
}

func (l *Ledger) held(kind Resource) *int64 {
	switch kind {
	case ResourcePlastic:
		return &l.Plastic
	case ResourceGas:
		return &l.Gas
	case ResourceBottles:
		return &l.PlasticBottles
	default:
		return nil
	}
}

// Deposit moves cash into savings. Amounts outside (0, cash] are ignored.
func (l *Ledger) Deposit(amount int64) bool {
	if amount <= 0 || amount > l.Cash {
		return false
	}
	l.Cash -= amount
	l.Savings += amount
	return true
}

// Withdraw moves savings back into cash. Amounts outside (0, savings] are
// ignored.
func (l *Ledger) Withdraw(amount int64) bool {
	if amount <= 0 || amount > l.Savings {
		return false
	}
	l.Savings -= amount
	l.Cash += amount
	return true
}

// SetBottleBudget sets the per-factory plastic consumption ceiling.
// Negative values are ignored.
func (l *Ledger) SetBottleBudget(amount int64) {
	if amount < 0 {
		return
	}
	l.BottleProductionBudget = amount
}

// AccrueInterest credits floor(savings*rate%) to savings and reports the
// amount credited.
func (l *Ledger) AccrueInterest(ratePct int) int64 {
	interest := l.Savings * int64(ratePct) / 100
	l.Savings += interest
	return interest
}

// ProduceBottles runs one bottle production cycle: consumes up to
// budget*factories plastic, rounded down to whole-bottle multiples, and
// credits the produced bottles. Fractional plastic stays in the ledger.
func (l *Ledger) ProduceBottles(cfg config.Balance) int64 {
	if l.OwnedBottleFactories == 0 || l.BottleProductionBudget == 0 {
		return 0
	}
	totalBudget := l.BottleProductionBudget * l.OwnedBottleFactories
	consume := min(l.Plastic, totalBudget)
	bottles := consume / cfg.PlasticPerBottle
	if bottles <= 0 {
		return 0
	}
	l.Plastic -= bottles * cfg.PlasticPerBottle
	l.PlasticBottles += bottles
	return bottles
}

// Grant credits cash without a quota check (full admin).
// Non-positive amounts are no-ops.
func (l *Ledger) Grant(amount int64) bool {
	if amount <= 0 {
		return false
	}
	l.Cash += amount
	return true
}

// GrantLimited clamps the request to the remaining admin quota and records
// the granted amount. Returns the amount actually credited.
func (l *Ledger) GrantLimited(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	remaining := l.AdminMoneyLimit - l.AdminMoneyGiven
	granted := min(amount, remaining)
	if granted <= 0 {
		return 0
	}
	l.Cash += granted
	l.AdminMoneyGiven += granted
	return granted
}

// RaiseAdminLimit increases the limited role's quota (full admin only; the
// caller enforces the privilege check). Non-positive amounts are no-ops.
func (l *Ledger) RaiseAdminLimit(amount int64) bool {
	if amount <= 0 {
		return false
	}
	l.AdminMoneyLimit += amount
	return true
}
