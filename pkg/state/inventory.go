package state

import (
	"log/slog"
	"strings"
)

// ItemUpdate is one requested change to the player's resources, typically
// extracted from a narrative turn by the inventory detection prompt.
type ItemUpdate struct {
	Item   string `json:"item"`
	Change int    `json:"change"`
}

// ApplyItemUpdates mutates the resource ledger. Updates with an empty item
// name or a zero change are skipped. Removals of items the player does not
// hold are skipped. Quantities never go below zero; an item whose quantity
// reaches zero is removed from the map entirely.
func (gs *GameState) ApplyItemUpdates(updates []ItemUpdate, logger *slog.Logger) {
	if gs.Resources == nil {
		gs.Resources = make(map[string]int)
	}
	for _, u := range updates {
		item := strings.ToLower(strings.TrimSpace(u.Item))
		if item == "" || u.Change == 0 {
			if logger != nil {
				logger.Debug("Skipping invalid item update", "item", u.Item, "change", u.Change)
			}
			continue
		}
		current, held := gs.Resources[item]
		if u.Change < 0 && !held {
			if logger != nil {
				logger.Debug("Skipping removal of item not held", "item", item)
			}
			continue
		}
		next := current + u.Change
		if next <= 0 {
			delete(gs.Resources, item)
			continue
		}
		gs.Resources[item] = next
	}
}

// Resource returns the held quantity of an item, zero when absent.
func (gs *GameState) Resource(item string) int {
	return gs.Resources[strings.ToLower(item)]
}

// SpendResource decrements an item by one if held, reporting success.
func (gs *GameState) SpendResource(item string) bool {
	item = strings.ToLower(item)
	qty, held := gs.Resources[item]
	if !held {
		return false
	}
	if qty <= 1 {
		delete(gs.Resources, item)
	} else {
		gs.Resources[item] = qty - 1
	}
	return true
}
