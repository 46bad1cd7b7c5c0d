package memberships

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/shelferr"
)

// Reorder atomically replaces the ordering of a list. orderedBookIDs must be
// a complete permutation of the current member set: unknown or repeated ids
// are rejected, as are partial reorders. Positions are rewritten to
// (index+1)*PositionStep inside a single transaction so a reader never
// observes a half-renumbered list.
func (s *Service) Reorder(ownerID, listID uint, orderedBookIDs []uint) error {
	if _, err := s.getOwnedList(ownerID, listID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var currentIDs []uint
		err := tx.Model(&entities.Membership{}).
			Where("list_id = ?", listID).
			Pluck("book_id", &currentIDs).Error
		if err != nil {
			return fmt.Errorf("failed to load current members: %w", err)
		}

		members := make(map[uint]bool, len(currentIDs))
		for _, id := range currentIDs {
			members[id] = true
		}

		seen := make(map[uint]bool, len(orderedBookIDs))
		for _, id := range orderedBookIDs {
			if !members[id] {
				return shelferr.New(shelferr.KindInvalidMembers, "book %d is not a member of list %d", id, listID)
			}
			if seen[id] {
				return shelferr.New(shelferr.KindInvalidMembers, "book %d appears more than once", id)
			}
			seen[id] = true
		}
		if len(orderedBookIDs) != len(currentIDs) {
			return shelferr.New(shelferr.KindIncompleteReorder,
				"reorder must cover all %d members, got %d", len(currentIDs), len(orderedBookIDs))
		}

		return renumber(tx, listID, orderedBookIDs)
	})
}

// Compact renumbers a standard list's memberships in their current order,
// closing the gaps left by removals. Favorites-type lists are skipped because
// their positions encode slot numbers.
func (s *Service) Compact(listID uint) error {
	var list entities.List
	if err := s.db.First(&list, listID).Error; err != nil {
		return fmt.Errorf("failed to load list %d: %w", listID, err)
	}
	if list.Type.IsFavorites() {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var bookIDs []uint
		err := tx.Model(&entities.Membership{}).
			Where("list_id = ?", listID).
			Order("position ASC").
			Pluck("book_id", &bookIDs).Error
		if err != nil {
			return fmt.Errorf("failed to load members for compaction: %w", err)
		}
		return renumber(tx, listID, bookIDs)
	})
}

// StandardListIDs returns the ids of every standard list, for compaction sweeps.
func (s *Service) StandardListIDs() ([]uint, error) {
	var ids []uint
	err := s.db.Model(&entities.List{}).
		Where("type = ?", entities.ListTypeStandard).
		Pluck("id", &ids).Error
	return ids, err
}

func renumber(tx *gorm.DB, listID uint, orderedBookIDs []uint) error {
	for i, bookID := range orderedBookIDs {
		err := tx.Model(&entities.Membership{}).
			Where("list_id = ? AND book_id = ?", listID, bookID).
			Update("position", (i+1)*PositionStep).Error
		if err != nil {
			return fmt.Errorf("failed to renumber book %d: %w", bookID, err)
		}
	}
	return nil
}
