package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_FillsOnlyZeroFields(t *testing.T) {
	c := &Config{}
	c.Balance.GasSellPrice = 42
	c.ApplyDefaults()

	assert.Equal(t, int64(42), c.Balance.GasSellPrice)
	assert.Equal(t, 2500, c.Balance.DropLifespanMS)
	assert.Len(t, c.Balance.RigTiers, 5)
	assert.Equal(t, int64(100000000), c.Balance.AdminMoneyLimit)
}

func TestLoad_ReadsYAMLAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oil.yml")
	raw := `
version: test
balance:
  gas_sell_price: 31000
  rig_tiers:
    - level: 1
      cost: 100
      production_rate: 1
admin:
  credentials:
    - username: root
      password: pw
      level: full
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Version)
	assert.Equal(t, int64(31000), cfg.Balance.GasSellPrice)
	// A configured tier table replaces the default wholesale.
	assert.Len(t, cfg.Balance.RigTiers, 1)
	// Everything unset still gets defaults.
	assert.Equal(t, 600, cfg.Balance.DropSpawnIntervalMS)
	require.Len(t, cfg.Admin.Credentials, 1)
	assert.Equal(t, "full", cfg.Admin.Credentials[0].Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("balance: ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestFromEnv_OverridesSelectedKnobs(t *testing.T) {
	t.Setenv("ADMIN_MONEY_LIMIT", "5000")
	t.Setenv("MOON_RUN_DURATION_S", "60")
	t.Setenv("DROP_LIFESPAN_MS", "not a number")

	cfg := FromEnv()

	assert.Equal(t, int64(5000), cfg.AdminMoneyLimit)
	assert.Equal(t, 60, cfg.MoonRunDurationS)
	// Unparseable values fall back silently.
	assert.Equal(t, 2500, cfg.DropLifespanMS)
}

func TestAdminFromEnv_ParsesTriples(t *testing.T) {
	t.Setenv("OIL_ADMIN_USERS", "root:hunter2:full, helper:pw:limited, malformed")

	cfg := AdminFromEnv()

	require.Len(t, cfg.Credentials, 2)
	assert.Equal(t, AdminCredential{Username: "root", Password: "hunter2", Level: "full"}, cfg.Credentials[0])
	assert.Equal(t, "limited", cfg.Credentials[1].Level)
}

func TestAdminFromEnv_EmptyDisablesAdmin(t *testing.T) {
	t.Setenv("OIL_ADMIN_USERS", "")
	assert.Empty(t, AdminFromEnv().Credentials)
}
