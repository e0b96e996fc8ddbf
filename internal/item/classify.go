package item

import (
	"strings"

	"go-item-recovery/internal/model"
)

// Whitelisted reports whether the item type is eligible for recovery at
// all. Non-whitelisted destructions are dropped silently.
func Whitelisted(snap model.ItemSnapshot, whitelist []string) bool {
	for _, t := range whitelist {
		if strings.EqualFold(t, snap.Type) {
			return true
		}
	}
	return false
}

// HasAdvancedTag reports whether the snapshot's custom-data bag carries
// a key matching the configured advanced-enchantment tag pattern. Such
// items get stricter duplication checks and the flat advanced cost.
func HasAdvancedTag(snap model.ItemSnapshot, tagPattern string) bool {
	if tagPattern == "" {
		return false
	}
	for key := range snap.CustomData {
		if strings.Contains(key, tagPattern) {
			return true
		}
	}
	return false
}

// Blacklisted reports whether restoration of the snapshot is forbidden.
// A match on any configured lore substring or custom-data key substring
// marks the entry; the flag is frozen into the ledger at append time.
func Blacklisted(snap model.ItemSnapshot, lorePatterns []string, customDataPatterns []string) bool {
	for _, pattern := range lorePatterns {
		if pattern == "" {
			continue
		}
		for _, line := range snap.Lore {
			if strings.Contains(line, pattern) {
				return true
			}
		}
	}

	for _, pattern := range customDataPatterns {
		if pattern == "" {
			continue
		}
		for key := range snap.CustomData {
			if strings.Contains(key, pattern) {
				return true
			}
		}
	}

	return false
}
