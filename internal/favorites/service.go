// Package favorites presents the 1-indexed slot abstraction (1-6) over the
// raw membership positions of the favorites-type lists. The translation
// position = slot*slotStep lives only here; it happens to coincide
// numerically with the reorder renumbering convention but serves a different
// list type and is kept independent.
package favorites

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/shelferr"
)

const (
	MinSlot = 1
	MaxSlot = entities.MaxFavoriteMembers

	slotStep = 100
)

// Service maps favorite slots onto memberships of the owner's favorites lists.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Entry is one favorite as seen by callers: the book and its slot.
type Entry struct {
	Book entities.Book `json:"book"`
	Slot int           `json:"slot"`
}

// Set places a book into a slot of the owner's favorites list, creating the
// list on first use (all-time when year is empty, yearly otherwise). A book
// already on the list is moved to the new slot; a new book is subject to the
// capacity limit. Two books may transiently share a slot; the most recent
// assignment is canonical and no uniqueness check is made here.
func (s *Service) Set(ownerID, bookID uint, slot int, year string) (*entities.Membership, error) {
	if slot < MinSlot || slot > MaxSlot {
		return nil, shelferr.New(shelferr.KindValidation, "slot must be between %d and %d", MinSlot, MaxSlot)
	}
	year, err := normalizeYear(year)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnedBook(ownerID, bookID); err != nil {
		return nil, err
	}

	position := slot * slotStep
	var membership *entities.Membership

	err = s.db.Transaction(func(tx *gorm.DB) error {
		list, err := getOrCreateList(tx, ownerID, year)
		if err != nil {
			return err
		}

		var existing entities.Membership
		err = tx.Where("list_id = ? AND book_id = ?", list.ID, bookID).First(&existing).Error
		if err == nil {
			// Moving slots within the list, member set unchanged.
			err = tx.Model(&entities.Membership{}).
				Where("list_id = ? AND book_id = ?", list.ID, bookID).
				Update("position", position).Error
			if err != nil {
				return fmt.Errorf("failed to move favorite: %w", err)
			}
			existing.Position = position
			membership = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing favorite: %w", err)
		}

		var count int64
		if err := tx.Model(&entities.Membership{}).Where("list_id = ?", list.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count favorites: %w", err)
		}
		if count >= entities.MaxFavoriteMembers {
			return shelferr.New(shelferr.KindCapacity,
				"all %d favorite slots are taken", entities.MaxFavoriteMembers)
		}

		membership = &entities.Membership{ListID: list.ID, BookID: bookID, Position: position}
		return tx.Create(membership).Error
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// Remove takes a book out of the owner's favorites list. The list itself is
// kept even when it becomes empty.
func (s *Service) Remove(ownerID, bookID uint, year string) error {
	year, err := normalizeYear(year)
	if err != nil {
		return err
	}

	list, err := s.findList(ownerID, year)
	if err != nil {
		return err
	}

	result := s.db.Where("list_id = ? AND book_id = ?", list.ID, bookID).Delete(&entities.Membership{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shelferr.New(shelferr.KindNotFound, "book %d is not a favorite", bookID)
	}
	return nil
}

// Fetch returns the owner's favorites ordered by slot. A missing list is an
// empty result, not an error. Slots are derived by integer division; a
// position written out-of-band through the raw membership manager may not
// divide exactly.
func (s *Service) Fetch(ownerID uint, year string) ([]Entry, error) {
	year, err := normalizeYear(year)
	if err != nil {
		return nil, err
	}

	list, err := s.findList(ownerID, year)
	if err != nil {
		if shelferr.IsKind(err, shelferr.KindNotFound) {
			return []Entry{}, nil
		}
		return nil, err
	}

	var memberships []entities.Membership
	err = s.db.Preload("Book").
		Where("list_id = ?", list.ID).
		Order("position ASC, book_id ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	entries := make([]Entry, 0, len(memberships))
	for _, m := range memberships {
		if m.Book == nil {
			continue
		}
		entries = append(entries, Entry{Book: *m.Book, Slot: m.Position / slotStep})
	}
	return entries, nil
}

// AvailableYears returns every year the owner keeps a yearly favorites list
// for, sorted descending.
func (s *Service) AvailableYears(ownerID uint) ([]int, error) {
	var tokens []string
	err := s.db.Model(&entities.List{}).
		Where("owner_id = ? AND type = ?", ownerID, entities.ListTypeFavoritesYear).
		Pluck("year", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite years: %w", err)
	}

	years := make([]int, 0, len(tokens))
	for _, token := range tokens {
		year, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// getOrCreateList resolves the owner's favorites list for the given year
// ("" means all-time), creating it with an auto-generated title on first use.
func getOrCreateList(tx *gorm.DB, ownerID uint, year string) (*entities.List, error) {
	listType := entities.ListTypeFavoritesAll
	title := "All-Time Favorites"
	if year != "" {
		listType = entities.ListTypeFavoritesYear
		title = fmt.Sprintf("Favorite Books of %s", year)
	}

	var list entities.List
	query := tx.Where("owner_id = ? AND type = ?", ownerID, listType)
	if year != "" {
		query = query.Where("year = ?", year)
	}
	err := query.First(&list).Error
	if err == nil {
		return &list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve favorites list: %w", err)
	}

	list = entities.List{
		OwnerID:    ownerID,
		Title:      title,
		Visibility: entities.VisibilityPrivate,
		Type:       listType,
		Year:       year,
	}
	if err := tx.Create(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to create favorites list: %w", err)
	}
	return &list, nil
}

func (s *Service) findList(ownerID uint, year string) (*entities.List, error) {
	listType := entities.ListTypeFavoritesAll
	query := s.db.Where("owner_id = ? AND type = ?", ownerID, entities.ListTypeFavoritesAll)
	if year != "" {
		listType = entities.ListTypeFavoritesYear
		query = s.db.Where("owner_id = ? AND type = ? AND year = ?", ownerID, listType, year)
	}

	var list entities.List
	err := query.First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shelferr.New(shelferr.KindNotFound, "no favorites list found")
		}
		return nil, err
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

func normalizeYear(year string) (string, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		return "", nil
	}
	if _, err := strconv.Atoi(year); err != nil {
		return "", shelferr.New(shelferr.KindValidation, "year must be numeric, got %q", year)
	}
	return year, nil
}
