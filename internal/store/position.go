package store

import "fmt"

// positionGap is the spacing between freshly assigned positions. The headroom
// lets items move between neighbors by midpoint without renumbering the set.
const positionGap = 1000

// positionLookup resolves an optional neighbor id to its (position, parent).
// A nil id yields (fallback, nil): 0 for a missing previous neighbor,
// prev+gap for a missing next neighbor.
type positionLookup func(id *int64, fallback int64) (int64, *int64, error)

// nextPosition computes the position for a new sibling: one past the current
// maximum, offset by the gap. The offset keeps the first sibling away from
// zero, which would force a renumber on every move-to-top. table and
// parentCol are package constants, never caller input.
func (s *Store) nextPosition(table, parentCol string, parentID *int64) (int64, error) {
	query := fmt.Sprintf("SELECT COALESCE(MAX(position), -1) + 1 FROM %s", table)

	var next int64
	var err error
	if parentCol != "" {
		query += fmt.Sprintf(" WHERE %s IS ?", parentCol)
		err = s.db.QueryRow(query, parentID).Scan(&next)
	} else {
		err = s.db.QueryRow(query).Scan(&next)
	}
	if err != nil {
		return 0, translate(err)
	}
	return positionGap + next, nil
}

// moveItemBetween relocates an item between two optional neighbors. At least
// one bound is required: a nil prev means move to top, a nil next means move
// to bottom. Present neighbors must belong to the same parent as the target;
// cross-container moves are rejected, not silently reparented. When the
// midpoint collides with a bound the sibling set is renumbered and the move
// recomputed against the fresh positions.
func (s *Store) moveItemBetween(table string, itemID int64, prevID, nextID *int64, parentCol string, parentID *int64, lookup positionLookup) error {
	if prevID == nil && nextID == nil {
		return &InvalidDataError{
			Field:  "item_id",
			Reason: "either prev_id or next_id must be provided",
		}
	}

	prevPos, prevParent, err := lookup(prevID, 0)
	if err != nil {
		return err
	}
	nextPos, nextParent, err := lookup(nextID, prevPos+positionGap)
	if err != nil {
		return err
	}

	if (nextID != nil && !equalParent(nextParent, parentID)) ||
		(prevID != nil && !equalParent(prevParent, parentID)) {
		return &InvalidDataError{
			Field:  "parent_id",
			Reason: "all items must belong to the same parent",
		}
	}

	newPos := (prevPos + nextPos) / 2

	// Gap exhausted - renumber the entire sibling set and recompute.
	if newPos == prevPos || newPos == nextPos {
		if err := s.renumberPositions(table, parentCol, parentID); err != nil {
			return err
		}
		prevPos, _, err = lookup(prevID, 0)
		if err != nil {
			return err
		}
		nextPos, _, err = lookup(nextID, prevPos+positionGap)
		if err != nil {
			return err
		}
		newPos = (prevPos + nextPos) / 2
	}

	if err := s.mutate(table, itemID,
		fmt.Sprintf("UPDATE %s SET position = ? WHERE id = ?", table), newPos, itemID); err != nil {
		return err
	}

	logger.WithField("entity", table).WithField("id", itemID).Debug("position updated")
	return nil
}

// renumberPositions reassigns position = rank * gap across one sibling set,
// ordered by (position, id) so relative order is stable. The whole pass runs
// in a transaction: a failure mid-loop must not expose half-renumbered
// siblings.
func (s *Store) renumberPositions(table, parentCol string, parentID *int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return translate(err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf("SELECT id FROM %s", table)
	var args []any
	if parentCol != "" {
		query += fmt.Sprintf(" WHERE %s IS ?", parentCol)
		args = append(args, parentID)
	}
	query += " ORDER BY position, id"

	rows, err := tx.Query(query, args...)
	if err != nil {
		return translate(err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return translate(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return translate(err)
	}
	_ = rows.Close()

	update := fmt.Sprintf("UPDATE %s SET position = ? WHERE id = ?", table)
	for i, id := range ids {
		position := int64(i+1) * positionGap
		if _, err := tx.Exec(update, position, id); err != nil {
			return translate(err)
		}
	}

	logger.WithField("entity", table).WithField("siblings", len(ids)).Info("renumbered positions")
	return translate(tx.Commit())
}

func equalParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
