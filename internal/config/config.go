package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	JWTSecret   string
	CORSOrigins []string

	RateLimitRPM       int
	EventsRateLimitRPM int

	ServerName string

	ItemWhitelist       []string
	BlacklistLore       []string
	BlacklistCustomData []string
	AdvancedTag         string
	ProtectionEnchant   string

	BaseCost        int
	AdvancedCost    int
	TierCosts       []int
	Multipliers     map[string]float64
	MultiplierOrder []string
	CostLoreFormat  string

	RepairOnRecovery bool
	ReplayWindow     time.Duration
	HashWindow       time.Duration
	SettleDelay      time.Duration
	DuplicateWindow  time.Duration

	RetentionDays     int
	SweepInitialDelay time.Duration
	SweepInterval     time.Duration
	MirrorEnabled     bool

	BalanceServiceURL   string
	HoldingsServiceURL  string
	CollaboratorTimeout time.Duration
}

// defaultWhitelist covers the equipment types worth recording when no
// explicit list is configured.
var defaultWhitelist = []string{
	"DIAMOND_SWORD", "DIAMOND_PICKAXE", "DIAMOND_AXE", "DIAMOND_SHOVEL", "DIAMOND_HOE",
	"NETHERITE_SWORD", "NETHERITE_PICKAXE", "NETHERITE_AXE", "NETHERITE_SHOVEL", "NETHERITE_HOE",
	"DIAMOND_HELMET", "DIAMOND_CHESTPLATE", "DIAMOND_LEGGINGS", "DIAMOND_BOOTS",
	"NETHERITE_HELMET", "NETHERITE_CHESTPLATE", "NETHERITE_LEGGINGS", "NETHERITE_BOOTS",
	"BOW", "CROSSBOW", "TRIDENT", "ELYTRA", "SHIELD", "MACE",
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:  getInt("DB_MAX_CONNS", 10),
		DBMinConns:  getInt("DB_MIN_CONNS", 2),

		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "*")),

		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 100),
		EventsRateLimitRPM: getInt("EVENTS_RATE_LIMIT_RPM", 600),

		ServerName: getEnv("SERVER_NAME", "default"),

		ItemWhitelist:       splitCSV(strings.TrimSpace(os.Getenv("ITEM_WHITELIST"))),
		BlacklistLore:       splitCSV(strings.TrimSpace(os.Getenv("BLACKLIST_LORE"))),
		BlacklistCustomData: splitCSV(strings.TrimSpace(os.Getenv("BLACKLIST_CUSTOM_DATA"))),
		AdvancedTag:         getEnv("ADVANCED_TAG", "advancedenchantments:ae_enchantment"),
		ProtectionEnchant:   getEnv("PROTECTION_ENCHANT", "unbreaking"),

		BaseCost:       getInt("BASE_COST", 500),
		AdvancedCost:   getInt("ADVANCED_COST", 30000),
		TierCosts:      splitIntCSV(getEnv("TIER_COSTS", "1000,2500,6000")),
		CostLoreFormat: getEnv("COST_LORE_FORMAT", "Restoration cost: {cost}"),

		RepairOnRecovery: getBool("REPAIR_ON_RECOVERY", true),
		ReplayWindow:     getDuration("REPLAY_WINDOW", 5*time.Second),
		HashWindow:       getDuration("HASH_WINDOW", 10*time.Second),
		SettleDelay:      getDuration("SETTLE_DELAY", 100*time.Millisecond),
		DuplicateWindow:  getDuration("LEDGER_DUPLICATE_WINDOW", 30*time.Second),

		RetentionDays:     getInt("RETENTION_DAYS", 30),
		SweepInitialDelay: getDuration("SWEEP_INITIAL_DELAY", time.Hour),
		SweepInterval:     getDuration("SWEEP_INTERVAL", 24*time.Hour),
		MirrorEnabled:     getBool("MIRROR_ENABLED", true),

		BalanceServiceURL:   strings.TrimSpace(os.Getenv("BALANCE_SERVICE_URL")),
		HoldingsServiceURL:  strings.TrimSpace(os.Getenv("HOLDINGS_SERVICE_URL")),
		CollaboratorTimeout: getDuration("COLLABORATOR_TIMEOUT", 10*time.Second),
	}

	cfg.Multipliers, cfg.MultiplierOrder = parseMultipliers(os.Getenv("COST_MULTIPLIERS"))

	if len(cfg.ItemWhitelist) == 0 {
		cfg.ItemWhitelist = defaultWhitelist
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.BaseCost < 0 || c.AdvancedCost < 0 {
		return fmt.Errorf("costs cannot be negative")
	}

	for key, factor := range c.Multipliers {
		if factor <= 0 {
			return fmt.Errorf("COST_MULTIPLIERS: factor for %q must be positive", key)
		}
	}

	if c.BalanceServiceURL == "" {
		return fmt.Errorf("BALANCE_SERVICE_URL is required")
	}

	if c.HoldingsServiceURL == "" {
		return fmt.Errorf("HOLDINGS_SERVICE_URL is required")
	}

	return nil
}

// parseMultipliers reads "key=factor" pairs from a CSV, keeping the
// configured order. Only the first matching key applies at pricing
// time, so order matters.
func parseMultipliers(raw string) (map[string]float64, []string) {
	multipliers := make(map[string]float64)
	var order []string

	for _, pair := range splitCSV(raw) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		factor, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || key == "" {
			continue
		}
		if _, exists := multipliers[key]; !exists {
			order = append(order, key)
		}
		multipliers[key] = factor
	}

	return multipliers, order
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}

func splitIntCSV(raw string) []int {
	var out []int
	for _, part := range splitCSV(raw) {
		v, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		out = append(out, v)
	}

	return out
}
