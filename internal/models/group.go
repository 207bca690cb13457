package models

import "github.com/google/uuid"

// Entity is one person taking part in the group's ledgers.
type Entity struct {
	// ID is the stable identifier of the entity (UUID).
	ID uuid.UUID

	// DisplayName is the mutable human-readable name (e.g., "Araex").
	DisplayName string
}

// Group is the full set of entities sharing ledgers.
// It is loaded once per session and only changed through an explicit save.
type Group struct {
	Entities []Entity
}

// Entity returns the entity with the given ID.
func (g *Group) Entity(id uuid.UUID) (Entity, bool) {
	if g == nil {
		return Entity{}, false
	}
	for _, e := range g.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// Has reports whether id resolves to an entity of the group.
func (g *Group) Has(id uuid.UUID) bool {
	_, ok := g.Entity(id)
	return ok
}

// DisplayName returns the entity's display name, or the ID text when unknown.
func (g *Group) DisplayName(id uuid.UUID) string {
	if e, ok := g.Entity(id); ok {
		return e.DisplayName
	}
	return id.String()
}
