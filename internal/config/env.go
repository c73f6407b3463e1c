package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv loads balance configuration from environment variables.
// Falls back to defaults if variables are not set.
func FromEnv() Balance {
	cfg := Default()

	if val := getEnvInt64("ADMIN_MONEY_LIMIT"); val > 0 {
		cfg.AdminMoneyLimit = val
	}
	if val := getEnvInt("DROP_LIFESPAN_MS"); val > 0 {
		cfg.DropLifespanMS = val
	}
	if val := getEnvInt("DROP_SPAWN_INTERVAL_MS"); val > 0 {
		cfg.DropSpawnIntervalMS = val
	}
	if val := getEnvInt("OUTAGE_DROP_SPAWN_INTERVAL_MS"); val > 0 {
		cfg.OutageDropSpawnIntervalMS = val
	}
	if val := getEnvInt("OUTAGE_DURATION_S"); val > 0 {
		cfg.OutageDurationS = val
	}
	if val := getEnvInt("WAR_DURATION_S"); val > 0 {
		cfg.WarDurationS = val
	}
	if val := getEnvInt("MOON_RUN_DURATION_S"); val > 0 {
		cfg.MoonRunDurationS = val
	}
	if val := getEnvInt("INTEREST_INTERVAL_S"); val > 0 {
		cfg.InterestIntervalS = val
	}
	if val := getEnvInt("INTEREST_RATE_PCT"); val > 0 {
		cfg.InterestRatePct = val
	}

	return cfg
}

// AdminFromEnv reads admin credentials from OIL_ADMIN_USERS, formatted as
// comma-separated user:pass:level triples. An empty variable disables the
// admin channel.
func AdminFromEnv() AdminConfig {
	var out AdminConfig
	raw := strings.TrimSpace(os.Getenv("OIL_ADMIN_USERS"))
	if raw == "" {
		return out
	}
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 3)
		if len(parts) != 3 {
			continue
		}
		out.Credentials = append(out.Credentials, AdminCredential{
			Username: parts[0],
			Password: parts[1],
			Level:    parts[2],
		})
	}
	return out
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvInt64(key string) int64 {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return num
}
