package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/borrowchecker/internal/models"
)

// LoadGroup returns the stored entities in their saved order.
// A database without entities has no group yet.
func (s *SQLiteStore) LoadGroup(ctx context.Context) (*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, display_name FROM entities ORDER BY position",
	)
	if err != nil {
		return nil, backendError("failed to get entities", err)
	}
	defer rows.Close()

	group := &models.Group{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, backendError("failed to scan entity", err)
		}
		entityID, err := models.ParseID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: entity row: %v", models.ErrParse, err)
		}
		group.Entities = append(group.Entities, models.Entity{ID: entityID, DisplayName: name})
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("failed to iterate entities", err)
	}

	if len(group.Entities) == 0 {
		return nil, fmt.Errorf("%w: group", models.ErrNotFound)
	}
	return group, nil
}

// SaveGroup replaces the stored entity list.
func (s *SQLiteStore) SaveGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entities"); err != nil {
		return backendError("failed to clear entities", err)
	}
	for i, e := range group.Entities {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO entities (id, display_name, position) VALUES (?, ?, ?)",
			e.ID.String(), e.DisplayName, i,
		)
		if err != nil {
			return backendError("failed to insert entity", err)
		}
	}
	return commit(ctx, tx)
}
