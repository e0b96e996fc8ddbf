package item

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-item-recovery/internal/model"
)

const testCostFormat = "Restoration cost: {cost}"

func pickaxe() model.ItemSnapshot {
	return model.ItemSnapshot{
		Type:          "DIAMOND_PICKAXE",
		Quantity:      1,
		Name:          "Tunnel Bore",
		Lore:          []string{"A trusty tool"},
		Enchantments:  map[string]int{"efficiency": 5, "unbreaking": 2},
		Damage:        1200,
		MaxDurability: 1561,
	}
}

func TestFingerprint_IgnoresDurability(t *testing.T) {
	a := pickaxe()
	b := pickaxe()
	b.Damage = 3

	assert.Equal(t, Fingerprint(a, testCostFormat), Fingerprint(b, testCostFormat))
}

func TestFingerprint_IgnoresCostAnnotation(t *testing.T) {
	stored := pickaxe()
	display := AnnotateCost(stored, 2500, testCostFormat)

	assert.Equal(t, Fingerprint(stored, testCostFormat), Fingerprint(display, testCostFormat))
}

func TestFingerprint_DistinguishesStructure(t *testing.T) {
	a := pickaxe()

	renamed := pickaxe()
	renamed.Name = "Other Name"
	assert.NotEqual(t, Fingerprint(a, testCostFormat), Fingerprint(renamed, testCostFormat))

	enchanted := pickaxe()
	enchanted.Enchantments["unbreaking"] = 3
	assert.NotEqual(t, Fingerprint(a, testCostFormat), Fingerprint(enchanted, testCostFormat))

	retyped := pickaxe()
	retyped.Type = "IRON_PICKAXE"
	assert.NotEqual(t, Fingerprint(a, testCostFormat), Fingerprint(retyped, testCostFormat))
}

func TestIdentityHash_SaltedByCaptureTime(t *testing.T) {
	snap := pickaxe()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := IdentityHash(snap, base, testCostFormat)
	second := IdentityHash(snap, base.Add(time.Nanosecond), testCostFormat)

	assert.NotEqual(t, first, second, "identical items captured at different instants must hash apart")
	assert.Equal(t, first, IdentityHash(snap, base, testCostFormat))
}

func TestSameIgnoringDurability(t *testing.T) {
	a := pickaxe()
	b := pickaxe()
	b.Damage = 0
	b.Quantity = 64

	assert.True(t, SameIgnoringDurability(a, b, testCostFormat))

	b.Lore = []string{"A trusty tool", "Extra line"}
	assert.False(t, SameIgnoringDurability(a, b, testCostFormat))
}

func TestSameIgnoringDurability_DisplayCopyMatchesStored(t *testing.T) {
	stored := pickaxe()
	display := AnnotateCost(stored, 6000, testCostFormat)

	assert.True(t, SameIgnoringDurability(stored, display, testCostFormat))
}
