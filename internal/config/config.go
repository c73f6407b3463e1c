package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// AdminCredential is one username/password pair mapped to a privilege level
// ("full" or "limited"). Credentials live in configuration, not code.
type AdminCredential struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Level    string `yaml:"level" json:"level"`
}

type AdminConfig struct {
	Credentials []AdminCredential `yaml:"credentials" json:"credentials"`
}

type Config struct {
	Version string      `yaml:"version" json:"version"`
	Balance Balance     `yaml:"balance" json:"balance"`
	Admin   AdminConfig `yaml:"admin" json:"admin"`
}

func (c *Config) ApplyDefaults() {
	def := Default()
	if c.Balance.DropLifespanMS == 0 {
		c.Balance.DropLifespanMS = def.DropLifespanMS
	}
	if c.Balance.DropSpawnIntervalMS == 0 {
		c.Balance.DropSpawnIntervalMS = def.DropSpawnIntervalMS
	}
	if c.Balance.OutageDropSpawnIntervalMS == 0 {
		c.Balance.OutageDropSpawnIntervalMS = def.OutageDropSpawnIntervalMS
	}
	if c.Balance.DropSweepIntervalMS == 0 {
		c.Balance.DropSweepIntervalMS = def.DropSweepIntervalMS
	}
	if c.Balance.MinDropSizePX == 0 {
		c.Balance.MinDropSizePX = def.MinDropSizePX
	}
	if c.Balance.MaxDropSizePX == 0 {
		c.Balance.MaxDropSizePX = def.MaxDropSizePX
	}
	if len(c.Balance.RigTiers) == 0 {
		c.Balance.RigTiers = def.RigTiers
	}
	if c.Balance.MiniRigBaseCost == 0 {
		c.Balance.MiniRigBaseCost = def.MiniRigBaseCost
	}
	if c.Balance.MiniRigCostIncrease == 0 {
		c.Balance.MiniRigCostIncrease = def.MiniRigCostIncrease
	}
	if c.Balance.MiniRigProductionRate == 0 {
		c.Balance.MiniRigProductionRate = def.MiniRigProductionRate
	}
	if c.Balance.PlasticRefineryCost == 0 {
		c.Balance.PlasticRefineryCost = def.PlasticRefineryCost
	}
	if c.Balance.PlasticSellPrice == 0 {
		c.Balance.PlasticSellPrice = def.PlasticSellPrice
	}
	if c.Balance.GasRefineryCost == 0 {
		c.Balance.GasRefineryCost = def.GasRefineryCost
	}
	if c.Balance.GasSellPrice == 0 {
		c.Balance.GasSellPrice = def.GasSellPrice
	}
	if c.Balance.GasStationCost == 0 {
		c.Balance.GasStationCost = def.GasStationCost
	}
	if c.Balance.GasStationSellRatePerSec == 0 {
		c.Balance.GasStationSellRatePerSec = def.GasStationSellRatePerSec
	}
	if c.Balance.GasStationPriceMultiplier == 0 {
		c.Balance.GasStationPriceMultiplier = def.GasStationPriceMultiplier
	}
	if c.Balance.BottleFactoryCost == 0 {
		c.Balance.BottleFactoryCost = def.BottleFactoryCost
	}
	if c.Balance.BottleProductionIntervalMS == 0 {
		c.Balance.BottleProductionIntervalMS = def.BottleProductionIntervalMS
	}
	if c.Balance.PlasticPerBottle == 0 {
		c.Balance.PlasticPerBottle = def.PlasticPerBottle
	}
	if c.Balance.BottleSellPrice == 0 {
		c.Balance.BottleSellPrice = def.BottleSellPrice
	}
	if c.Balance.EventCheckIntervalMS == 0 {
		c.Balance.EventCheckIntervalMS = def.EventCheckIntervalMS
	}
	if c.Balance.OutageDurationS == 0 {
		c.Balance.OutageDurationS = def.OutageDurationS
	}
	if c.Balance.OutagePriceMultiplier == 0 {
		c.Balance.OutagePriceMultiplier = def.OutagePriceMultiplier
	}
	if c.Balance.OutageTriggerChance == 0 {
		c.Balance.OutageTriggerChance = def.OutageTriggerChance
	}
	if c.Balance.WarDurationS == 0 {
		c.Balance.WarDurationS = def.WarDurationS
	}
	if c.Balance.WarPriceMultiplier == 0 {
		c.Balance.WarPriceMultiplier = def.WarPriceMultiplier
	}
	if c.Balance.WarTriggerChance == 0 {
		c.Balance.WarTriggerChance = def.WarTriggerChance
	}
	if c.Balance.MoonRunDurationS == 0 {
		c.Balance.MoonRunDurationS = def.MoonRunDurationS
	}
	if c.Balance.MoonRunPriceMultiplier == 0 {
		c.Balance.MoonRunPriceMultiplier = def.MoonRunPriceMultiplier
	}
	if c.Balance.InterestIntervalS == 0 {
		c.Balance.InterestIntervalS = def.InterestIntervalS
	}
	if c.Balance.InterestRatePct == 0 {
		c.Balance.InterestRatePct = def.InterestRatePct
	}
	if c.Balance.AdminMoneyLimit == 0 {
		c.Balance.AdminMoneyLimit = def.AdminMoneyLimit
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	return &c, nil
}
