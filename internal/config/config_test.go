package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/recovery")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BALANCE_SERVICE_URL", "http://wallet.local")
	t.Setenv("HOLDINGS_SERVICE_URL", "http://holdings.local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 500, cfg.BaseCost)
	assert.Equal(t, 30000, cfg.AdvancedCost)
	assert.Equal(t, []int{1000, 2500, 6000}, cfg.TierCosts)
	assert.Equal(t, "Restoration cost: {cost}", cfg.CostLoreFormat)
	assert.Equal(t, 5*time.Second, cfg.ReplayWindow)
	assert.Equal(t, 10*time.Second, cfg.HashWindow)
	assert.Equal(t, 30*time.Second, cfg.DuplicateWindow)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, time.Hour, cfg.SweepInitialDelay)
	assert.Equal(t, 24*time.Hour, cfg.SweepInterval)
	assert.True(t, cfg.RepairOnRecovery)
	assert.True(t, cfg.MirrorEnabled)
	assert.NotEmpty(t, cfg.ItemWhitelist)
	assert.Contains(t, cfg.ItemWhitelist, "DIAMOND_SWORD")
}

func TestLoad_MissingRequiredValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BALANCE_SERVICE_URL", "http://wallet.local")
	t.Setenv("HOLDINGS_SERVICE_URL", "http://holdings.local")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/recovery")
	t.Setenv("JWT_SECRET", "")

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/recovery")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BALANCE_SERVICE_URL", "http://wallet.local")
	t.Setenv("HOLDINGS_SERVICE_URL", "http://holdings.local")
	t.Setenv("BASE_COST", "not-a-number")
	t.Setenv("REPLAY_WINDOW", "soon")
	t.Setenv("REPAIR_ON_RECOVERY", "sometimes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.BaseCost)
	assert.Equal(t, 5*time.Second, cfg.ReplayWindow)
	assert.True(t, cfg.RepairOnRecovery)
}

func TestParseMultipliers(t *testing.T) {
	multipliers, order := parseMultipliers("vip=0.5, founder=0.25, broken==, vip=0.4")

	assert.Equal(t, []string{"vip", "founder"}, order)
	assert.Equal(t, 0.4, multipliers["vip"], "later pairs overwrite, order keeps first position")
	assert.Equal(t, 0.25, multipliers["founder"])
	assert.NotContains(t, multipliers, "broken")
}

func TestLoad_CustomListsAndMultipliers(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/recovery")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BALANCE_SERVICE_URL", "http://wallet.local")
	t.Setenv("HOLDINGS_SERVICE_URL", "http://holdings.local")
	t.Setenv("ITEM_WHITELIST", "GOLDEN_SWORD, GOLDEN_AXE")
	t.Setenv("TIER_COSTS", "100,200")
	t.Setenv("COST_MULTIPLIERS", "vip=1.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"GOLDEN_SWORD", "GOLDEN_AXE"}, cfg.ItemWhitelist)
	assert.Equal(t, []int{100, 200}, cfg.TierCosts)
	assert.Equal(t, 1.5, cfg.Multipliers["vip"])
}
