package item

import (
	"sort"
	"strings"

	"go-item-recovery/internal/model"
)

// CostConfig carries the pricing table for restoration.
type CostConfig struct {
	// BaseCost applies when the item has no protection enchantment.
	BaseCost int
	// AdvancedCost is the flat price for items carrying the advanced
	// enchantment tag, replacing the tier lookup entirely.
	AdvancedCost int
	// TierCosts is indexed by protection-enchantment level: level 1
	// pays TierCosts[0] and so on. Out-of-range levels fall back to
	// BaseCost.
	TierCosts []int
	// Multipliers maps a custom-data key substring to a factor applied
	// after tier selection. The first matching pattern wins; the result
	// is truncated to an integer.
	Multipliers map[string]float64
	// MultiplierOrder fixes the evaluation order of Multipliers so that
	// "first match wins" is deterministic.
	MultiplierOrder []string

	// AdvancedTag is the custom-data key substring marking advanced
	// enchantment items.
	AdvancedTag string
	// ProtectionEnchant is the enchantment whose level selects the tier.
	ProtectionEnchant string
}

// Calculator prices item restorations. It never fails: missing or
// malformed configuration degrades to the documented defaults.
type Calculator struct {
	cfg CostConfig
}

func NewCalculator(cfg CostConfig) *Calculator {
	if cfg.BaseCost <= 0 {
		cfg.BaseCost = 500
	}
	if cfg.AdvancedCost <= 0 {
		cfg.AdvancedCost = 30000
	}
	if cfg.ProtectionEnchant == "" {
		cfg.ProtectionEnchant = "unbreaking"
	}
	return &Calculator{cfg: cfg}
}

// RestorationCost prices a single unit of the snapshot. Selection order
// is fixed: advanced-tag check, then protection-enchantment tier, then
// the first matching multiplier.
func (c *Calculator) RestorationCost(snap model.ItemSnapshot) int {
	cost := c.cfg.BaseCost

	if HasAdvancedTag(snap, c.cfg.AdvancedTag) {
		cost = c.cfg.AdvancedCost
	} else if level, ok := snap.Enchantments[c.cfg.ProtectionEnchant]; ok {
		if level > 0 && level <= len(c.cfg.TierCosts) {
			cost = c.cfg.TierCosts[level-1]
		}
	}

	for _, pattern := range c.multiplierPatterns() {
		factor := c.cfg.Multipliers[pattern]
		if factor <= 0 {
			continue
		}
		if customDataMatches(snap, pattern) {
			cost = int(float64(cost) * factor)
			break
		}
	}

	return cost
}

func (c *Calculator) multiplierPatterns() []string {
	if len(c.cfg.MultiplierOrder) > 0 {
		return c.cfg.MultiplierOrder
	}
	patterns := make([]string, 0, len(c.cfg.Multipliers))
	for pattern := range c.cfg.Multipliers {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}

func customDataMatches(snap model.ItemSnapshot, pattern string) bool {
	for key := range snap.CustomData {
		if strings.Contains(key, pattern) {
			return true
		}
	}
	return false
}
