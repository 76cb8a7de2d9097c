package identity

import (
	"fmt"
	"sort"
	"strings"
)

// Mapping is an operator-curated override for a player name.
type Mapping struct {
	ID     string
	Name   string
	Club   string
	TeamID string
}

func (m Mapping) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("mapping id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("mapping %s name is required", m.ID)
	}
	return nil
}

// ManualMappings is a read-only lookup keyed by normalized display name.
type ManualMappings struct {
	byName map[string]Mapping
	byClub map[string]string
}

func NewManualMappings(entries map[string]Mapping) (*ManualMappings, error) {
	byName := make(map[string]Mapping, len(entries))
	byClub := make(map[string]string)
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		mapping := entries[key]
		if err := mapping.Validate(); err != nil {
			return nil, fmt.Errorf("mapping %q: %w", key, err)
		}
		normalized := Normalize(key)
		if normalized == "" {
			return nil, fmt.Errorf("mapping key %q is empty after normalization", key)
		}
		if existing, ok := byName[normalized]; ok && existing.ID != mapping.ID {
			return nil, fmt.Errorf("mapping key %q conflicts with player %s", key, existing.ID)
		}
		byName[normalized] = mapping
		if club := foldName(mapping.Club); club != "" && mapping.TeamID != "" {
			if _, seen := byClub[club]; !seen {
				byClub[club] = mapping.TeamID
			}
		}
	}
	return &ManualMappings{byName: byName, byClub: byClub}, nil
}

func (m *ManualMappings) Lookup(name string) (Mapping, bool) {
	if m == nil {
		return Mapping{}, false
	}
	mapping, ok := m.byName[Normalize(name)]
	return mapping, ok
}

func (m *ManualMappings) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byName)
}

// TeamForClub returns the team id recorded for a club name in any mapping.
func (m *ManualMappings) TeamForClub(club string) (string, bool) {
	if m == nil {
		return "", false
	}
	teamID, ok := m.byClub[foldName(club)]
	return teamID, ok
}
