package config

// RigTier describes one oil rig level in the static tier table.
type RigTier struct {
	Level          int   `yaml:"level" json:"level"`
	Cost           int64 `yaml:"cost" json:"cost"`
	ProductionRate int64 `yaml:"production_rate" json:"production_rate"`
}

// Balance holds gameplay balance configuration. All money amounts are
// minor currency units (cents).
type Balance struct {
	// Oil drops
	DropLifespanMS            int `yaml:"drop_lifespan_ms" json:"drop_lifespan_ms"`
	DropSpawnIntervalMS       int `yaml:"drop_spawn_interval_ms" json:"drop_spawn_interval_ms"`
	OutageDropSpawnIntervalMS int `yaml:"outage_drop_spawn_interval_ms" json:"outage_drop_spawn_interval_ms"`
	DropSweepIntervalMS       int `yaml:"drop_sweep_interval_ms" json:"drop_sweep_interval_ms"`
	MinDropSizePX             int `yaml:"min_drop_size_px" json:"min_drop_size_px"`
	MaxDropSizePX             int `yaml:"max_drop_size_px" json:"max_drop_size_px"`

	// Rigs
	RigTiers              []RigTier `yaml:"rig_tiers" json:"rig_tiers"`
	MiniRigBaseCost       int64     `yaml:"mini_rig_base_cost" json:"mini_rig_base_cost"`
	MiniRigCostIncrease   int64     `yaml:"mini_rig_cost_increase" json:"mini_rig_cost_increase"`
	MiniRigProductionRate int64     `yaml:"mini_rig_production_rate" json:"mini_rig_production_rate"`

	// Refineries and downstream industry
	PlasticRefineryCost        int64   `yaml:"plastic_refinery_cost" json:"plastic_refinery_cost"`
	PlasticSellPrice           int64   `yaml:"plastic_sell_price" json:"plastic_sell_price"`
	GasRefineryCost            int64   `yaml:"gas_refinery_cost" json:"gas_refinery_cost"`
	GasSellPrice               int64   `yaml:"gas_sell_price" json:"gas_sell_price"`
	GasStationCost             int64   `yaml:"gas_station_cost" json:"gas_station_cost"`
	GasStationSellRatePerSec   int64   `yaml:"gas_station_sell_rate_per_sec" json:"gas_station_sell_rate_per_sec"`
	GasStationPriceMultiplier  float64 `yaml:"gas_station_price_multiplier" json:"gas_station_price_multiplier"`
	BottleFactoryCost          int64   `yaml:"bottle_factory_cost" json:"bottle_factory_cost"`
	BottleProductionIntervalMS int     `yaml:"bottle_production_interval_ms" json:"bottle_production_interval_ms"`
	PlasticPerBottle           int64   `yaml:"plastic_per_bottle" json:"plastic_per_bottle"`
	BottleSellPrice            int64   `yaml:"bottle_sell_price" json:"bottle_sell_price"`

	// Market events
	EventCheckIntervalMS   int     `yaml:"event_check_interval_ms" json:"event_check_interval_ms"`
	OutageDurationS        int     `yaml:"outage_duration_s" json:"outage_duration_s"`
	OutagePriceMultiplier  int64   `yaml:"outage_price_multiplier" json:"outage_price_multiplier"`
	OutageTriggerChance    float64 `yaml:"outage_trigger_chance" json:"outage_trigger_chance"`
	WarDurationS           int     `yaml:"war_duration_s" json:"war_duration_s"`
	WarPriceMultiplier     int64   `yaml:"war_price_multiplier" json:"war_price_multiplier"`
	WarTriggerChance       float64 `yaml:"war_trigger_chance" json:"war_trigger_chance"`
	MoonRunDurationS       int     `yaml:"moon_run_duration_s" json:"moon_run_duration_s"`
	MoonRunPriceMultiplier int64   `yaml:"moon_run_price_multiplier" json:"moon_run_price_multiplier"`

	// Bank
	InterestIntervalS int `yaml:"interest_interval_s" json:"interest_interval_s"`
	InterestRatePct   int `yaml:"interest_rate_pct" json:"interest_rate_pct"`

	// Admin
	AdminMoneyLimit int64 `yaml:"admin_money_limit" json:"admin_money_limit"`
}

// Default returns the default balance configuration.
func Default() Balance {
	return Balance{
		DropLifespanMS:            2500,
		DropSpawnIntervalMS:       600,
		OutageDropSpawnIntervalMS: 2000,
		DropSweepIntervalMS:       100,
		MinDropSizePX:             30,
		MaxDropSizePX:             80,

		RigTiers: []RigTier{
			{Level: 1, Cost: 5000, ProductionRate: 10},
			{Level: 2, Cost: 25000, ProductionRate: 60},
			{Level: 3, Cost: 100000, ProductionRate: 250},
			{Level: 4, Cost: 500000, ProductionRate: 1200},
			{Level: 5, Cost: 2000000, ProductionRate: 6000},
		},
		MiniRigBaseCost:       100,
		MiniRigCostIncrease:   20,
		MiniRigProductionRate: 10,

		PlasticRefineryCost:        250000,
		PlasticSellPrice:           15000,
		GasRefineryCost:            500000,
		GasSellPrice:               25000,
		GasStationCost:             2500000,
		GasStationSellRatePerSec:   1,
		GasStationPriceMultiplier:  1.5,
		BottleFactoryCost:          1000000,
		BottleProductionIntervalMS: 10000,
		PlasticPerBottle:           10,
		BottleSellPrice:            200000,

		EventCheckIntervalMS:   1000,
		OutageDurationS:        20,
		OutagePriceMultiplier:  10,
		OutageTriggerChance:    0.02,
		WarDurationS:           15,
		WarPriceMultiplier:     15,
		WarTriggerChance:       0.005,
		MoonRunDurationS:       180,
		MoonRunPriceMultiplier: 100000000,

		InterestIntervalS: 60,
		InterestRatePct:   10,

		AdminMoneyLimit: 100000000,
	}
}

// TierCount is the number of rig tiers in the static table. Persisted rig
// sequences whose length differs are treated as corrupt.
func (b Balance) TierCount() int {
	return len(b.RigTiers)
}
