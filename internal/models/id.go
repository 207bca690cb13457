package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ParseID parses the canonical text form of an identifier.
// The nil UUID is rejected: it is never a valid entity, ledger or transaction ID.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q: %v", ErrInvalidID, s, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %q is the nil UUID", ErrInvalidID, s)
	}
	return id, nil
}

// ParseIDs parses a list of identifiers, failing on the first malformed one.
func ParseIDs(ss []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		id, err := ParseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// IDStrings renders identifiers in canonical text form.
func IDStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
