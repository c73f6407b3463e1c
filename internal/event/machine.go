package event

import (
	"github.com/dexhavrelock-sketch/oil-management/internal/config"
)

// Machine holds the session-local market events: oil outage and war. Each
// has an active flag and a seconds-remaining countdown decremented once per
// check interval. The moon run is not part of the machine; it lives in the
// shared slot and, while active, freezes the machine entirely.
type Machine struct {
	cfg config.Balance

	OutageActive    bool
	OutageRemaining int
	WarActive       bool
	WarRemaining    int
}

func NewMachine(cfg config.Balance) *Machine {
	return &Machine{cfg: cfg}
}

// Advance runs one event-check interval. draw is a uniform sample in
// [0, 1). The random trigger only fires when both events were inactive at
// the start of the interval; war wins the draw over outage because the
// thresholds are compared sequentially. While the moon run is active the
// machine does not advance at all.
func (m *Machine) Advance(moonRunActive bool, draw float64) {
	if moonRunActive {
		return
	}

	wasOutage := m.OutageActive
	wasWar := m.WarActive

	if m.OutageActive {
		m.OutageRemaining--
		if m.OutageRemaining <= 0 {
			m.StopOutage()
		}
	}
	if m.WarActive {
		m.WarRemaining--
		if m.WarRemaining <= 0 {
			m.StopWar()
		}
	}

	if wasOutage || wasWar {
		return
	}
	if draw < m.cfg.WarTriggerChance {
		m.StartWar()
	} else if draw < m.cfg.OutageTriggerChance {
		m.StartOutage()
	}
}

func (m *Machine) StartOutage() {
	m.OutageActive = true
	m.OutageRemaining = m.cfg.OutageDurationS
}

func (m *Machine) StopOutage() {
	m.OutageActive = false
	m.OutageRemaining = 0
}

func (m *Machine) StartWar() {
	m.WarActive = true
	m.WarRemaining = m.cfg.WarDurationS
}

func (m *Machine) StopWar() {
	m.WarActive = false
	m.WarRemaining = 0
}

// Multiplier is the product of the active local event multipliers. The
// caller substitutes the moon run multiplier when the shared event is
// active; it supersedes rather than stacks.
func (m *Machine) Multiplier() int64 {
	mult := int64(1)
	if m.WarActive {
		mult *= m.cfg.WarPriceMultiplier
	}
	if m.OutageActive {
		mult *= m.cfg.OutagePriceMultiplier
	}
	return mult
}
