package item

import (
	"strconv"
	"strings"

	"go-item-recovery/internal/model"
)

const costPlaceholder = "{cost}"

// AnnotateCost returns a display copy of the snapshot with the
// restoration cost appended to its lore. The original is not touched.
func AnnotateCost(snap model.ItemSnapshot, cost int, costFormat string) model.ItemSnapshot {
	annotated := snap.Clone()
	line := strings.ReplaceAll(costFormat, costPlaceholder, strconv.Itoa(cost))
	annotated.Lore = append(annotated.Lore, line)
	return annotated
}

// StripCostAnnotation removes any cost line previously appended by
// AnnotateCost. Matching is by the fixed text around the placeholder,
// so it works regardless of the cost value baked into the line.
func StripCostAnnotation(lore []string, costFormat string) []string {
	if len(lore) == 0 {
		return lore
	}

	marker := strings.TrimSpace(strings.ReplaceAll(costFormat, costPlaceholder, ""))
	if marker == "" {
		return lore
	}

	out := make([]string, 0, len(lore))
	for _, line := range lore {
		if strings.Contains(line, marker) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// StripCostLore returns a copy of the snapshot with the cost annotation
// removed from its lore, i.e. the shape the item had when it was stored.
func StripCostLore(snap model.ItemSnapshot, costFormat string) model.ItemSnapshot {
	clean := snap.Clone()
	clean.Lore = StripCostAnnotation(clean.Lore, costFormat)
	if len(clean.Lore) == 0 {
		clean.Lore = nil
	}
	return clean
}
