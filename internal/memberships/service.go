// Package memberships manages the ordered book-to-list associations: adding
// and removing members, per-member notes, and full-list reordering.
package memberships

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/shelferr"
)

// PositionStep is the gap left between consecutive positions so that a book
// can be inserted between two others without renumbering the whole list.
const PositionStep = 100

const MaxNotesLength = 2000

// Service handles membership lifecycle operations.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Add attaches a book to a list. When position is nil the membership is
// appended at max(position)+PositionStep (PositionStep for an empty list).
// The capacity check for favorites-type lists, the duplicate check and the
// insert run inside a single transaction.
func (s *Service) Add(ownerID, listID, bookID uint, position *int) (*entities.Membership, error) {
	list, err := s.getOwnedList(ownerID, listID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnedBook(ownerID, bookID); err != nil {
		return nil, err
	}
	if position != nil && *position < 0 {
		return nil, shelferr.New(shelferr.KindValidation, "position must be a non-negative integer")
	}

	membership := &entities.Membership{ListID: listID, BookID: bookID}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if list.Type.IsFavorites() {
			var count int64
			if err := tx.Model(&entities.Membership{}).Where("list_id = ?", listID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to count memberships: %w", err)
			}
			if count >= entities.MaxFavoriteMembers {
				return shelferr.New(shelferr.KindCapacity,
					"list %d already holds %d books", listID, entities.MaxFavoriteMembers)
			}
		}

		var existing entities.Membership
		err := tx.Where("list_id = ? AND book_id = ?", listID, bookID).First(&existing).Error
		if err == nil {
			return shelferr.New(shelferr.KindDuplicate, "book %d is already in list %d", bookID, listID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing membership: %w", err)
		}

		if position != nil {
			membership.Position = *position
		} else {
			next, err := nextPosition(tx, listID)
			if err != nil {
				return err
			}
			membership.Position = next
		}

		return tx.Create(membership).Error
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// Remove detaches a book from a list. Remaining positions keep their gaps;
// no renumbering happens here.
func (s *Service) Remove(ownerID, listID, bookID uint) error {
	if _, err := s.getOwnedList(ownerID, listID); err != nil {
		return err
	}

	result := s.db.Where("list_id = ? AND book_id = ?", listID, bookID).Delete(&entities.Membership{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove membership: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shelferr.New(shelferr.KindNotFound, "book %d is not in list %d", bookID, listID)
	}
	return nil
}

// UpdateNotes replaces the notes on a membership. Whitespace-only notes are
// stored as absent.
func (s *Service) UpdateNotes(ownerID, listID, bookID uint, notes string) (*entities.Membership, error) {
	if _, err := s.getOwnedList(ownerID, listID); err != nil {
		return nil, err
	}

	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLength {
		return nil, shelferr.New(shelferr.KindValidation, "notes must be at most %d characters", MaxNotesLength)
	}

	var membership entities.Membership
	err := s.db.Where("list_id = ? AND book_id = ?", listID, bookID).First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shelferr.New(shelferr.KindNotFound, "book %d is not in list %d", bookID, listID)
		}
		return nil, err
	}

	err = s.db.Model(&entities.Membership{}).
		Where("list_id = ? AND book_id = ?", listID, bookID).
		Update("notes", notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update notes: %w", err)
	}
	membership.Notes = notes
	return &membership, nil
}

// nextPosition computes the append position for a list within tx.
func nextPosition(tx *gorm.DB, listID uint) (int, error) {
	var max int
	err := tx.Model(&entities.Membership{}).
		Where("list_id = ?", listID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute next position: %w", err)
	}
	return max + PositionStep, nil
}

func (s *Service) getOwnedList(ownerID, listID uint) (*entities.List, error) {
	var list entities.List
	err := s.db.First(&list, listID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shelferr.New(shelferr.KindNotFound, "list %d not found", listID)
		}
		return nil, err
	}
	if list.OwnerID != ownerID {
		return nil, shelferr.New(shelferr.KindOwnership, "list %d is not owned by the caller", listID)
	}
	return &list, nil
}

func (s *Service) checkOwnedBook(ownerID, bookID uint) error {
	var book entities.Book
	err := s.db.First(&book, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shelferr.New(shelferr.KindNotFound, "book %d not found", bookID)
		}
		return err
	}
	if book.OwnerID != ownerID {
		return shelferr.New(shelferr.KindOwnership, "book %d is not owned by the caller", bookID)
	}
	return nil
}
