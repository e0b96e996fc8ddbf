package item

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-item-recovery/internal/model"
)

// Fingerprint computes the structural identity of a snapshot: type,
// display name, lore and enchantments. Durability and quantity are
// excluded, as is any restoration-cost line the list API appended to
// the lore, so a display copy and the stored original hash the same.
func Fingerprint(snap model.ItemSnapshot, costFormat string) string {
	sum := sha256.Sum256([]byte(structuralKey(snap, costFormat)))
	return hex.EncodeToString(sum[:])
}

// IdentityHash is the fingerprint material salted with a high-resolution
// timestamp. Two captures of the very same item produce distinct hashes,
// which is what lets the suppression window tell apart genuine repeat
// destructions from replayed notifications.
func IdentityHash(snap model.ItemSnapshot, now time.Time, costFormat string) string {
	salted := structuralKey(snap, costFormat) + "|" + fmt.Sprintf("%d", now.UnixNano())
	sum := sha256.Sum256([]byte(salted))
	return hex.EncodeToString(sum[:16])
}

// SameIgnoringDurability reports whether two snapshots are the same item
// for deduplication purposes: equal type, name, lore and enchantments.
// Remaining durability and stack quantity do not participate.
func SameIgnoringDurability(a model.ItemSnapshot, b model.ItemSnapshot, costFormat string) bool {
	if a.Type != b.Type {
		return false
	}
	return structuralKey(a, costFormat) == structuralKey(b, costFormat)
}

func structuralKey(snap model.ItemSnapshot, costFormat string) string {
	var sb strings.Builder
	sb.WriteString(snap.Type)
	sb.WriteString("|")
	sb.WriteString(snap.Name)
	sb.WriteString("|")
	sb.WriteString(strings.Join(StripCostAnnotation(snap.Lore, costFormat), "\n"))
	sb.WriteString("|")

	keys := make([]string, 0, len(snap.Enchantments))
	for k := range snap.Enchantments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%d;", k, snap.Enchantments[k])
	}

	return sb.String()
}
