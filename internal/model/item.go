package model

// ItemSnapshot is an immutable capture of an item at the moment it was
// destroyed. It is cloned on every hand-off; nothing mutates a snapshot
// after capture.
type ItemSnapshot struct {
	Type          string            `json:"type"`
	Quantity      int               `json:"quantity"`
	Name          string            `json:"name,omitempty"`
	Lore          []string          `json:"lore,omitempty"`
	Enchantments  map[string]int    `json:"enchantments,omitempty"`
	CustomData    map[string]string `json:"custom_data,omitempty"`
	Damage        int               `json:"damage,omitempty"`
	MaxDurability int               `json:"max_durability,omitempty"`
}

func (s ItemSnapshot) Clone() ItemSnapshot {
	out := s

	if s.Lore != nil {
		out.Lore = make([]string, len(s.Lore))
		copy(out.Lore, s.Lore)
	}

	if s.Enchantments != nil {
		out.Enchantments = make(map[string]int, len(s.Enchantments))
		for k, v := range s.Enchantments {
			out.Enchantments[k] = v
		}
	}

	if s.CustomData != nil {
		out.CustomData = make(map[string]string, len(s.CustomData))
		for k, v := range s.CustomData {
			out.CustomData[k] = v
		}
	}

	return out
}

// DisplayName falls back to the type identifier when the item carries no
// custom name.
func (s ItemSnapshot) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Type
}

// WorldContext locates a destruction event on the host side. It is
// recorded in the mirror table only and never consulted by the
// restore/delete path.
type WorldContext struct {
	ServerName string  `json:"server_name,omitempty"`
	World      string  `json:"world,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
}
