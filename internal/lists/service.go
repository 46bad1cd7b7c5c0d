// Package lists implements the list registry: creation, update and deletion
// of reading lists, including the per-owner uniqueness rules for the
// favorites-type lists.
package lists

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/shelferr"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Service handles list lifecycle operations.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateParams carries the caller-supplied fields for a new list.
// Visibility defaults to private and Type to standard when empty.
type CreateParams struct {
	Title       string
	Description string
	Visibility  entities.Visibility
	Type        entities.ListType
	Year        string
	CoverImage  string
}

// Create validates and persists a new list. For favorites-type lists the
// uniqueness check and the insert run inside one transaction so two
// concurrent calls cannot both pass the check.
func (s *Service) Create(ownerID uint, p CreateParams) (*entities.List, error) {
	title, err := validateTitle(p.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(p.Description)
	if err != nil {
		return nil, err
	}

	visibility := p.Visibility
	if visibility == "" {
		visibility = entities.VisibilityPrivate
	}
	if err := validateVisibility(visibility); err != nil {
		return nil, err
	}

	listType := p.Type
	if listType == "" {
		listType = entities.ListTypeStandard
	}
	year, err := validateTypeAndYear(listType, p.Year)
	if err != nil {
		return nil, err
	}

	list := &entities.List{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Visibility:  visibility,
		Type:        listType,
		Year:        year,
		CoverImage:  strings.TrimSpace(p.CoverImage),
	}

	if !listType.IsFavorites() {
		if err := s.db.Create(list).Error; err != nil {
			return nil, fmt.Errorf("failed to create list: %w", err)
		}
		return list, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&entities.List{}).Where("owner_id = ? AND type = ?", ownerID, listType)
		if listType == entities.ListTypeFavoritesYear {
			query = query.Where("year = ?", year)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check list uniqueness: %w", err)
		}
		if count > 0 {
			if listType == entities.ListTypeFavoritesYear {
				return shelferr.New(shelferr.KindUniqueness, "a favorites list for %s already exists", year)
			}
			return shelferr.New(shelferr.KindUniqueness, "an all-time favorites list already exists")
		}
		return tx.Create(list).Error
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateParams carries optional field updates; nil means "leave unchanged".
// Type and Year are immutable after creation and are deliberately absent.
type UpdateParams struct {
	Title       *string
	Description *string
	Visibility  *entities.Visibility
	CoverImage  *string
}

func (s *Service) Update(ownerID, listID uint, p UpdateParams) (*entities.List, error) {
	list, err := s.getOwned(ownerID, listID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if p.Title != nil {
		title, err := validateTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if p.Description != nil {
		description, err := validateDescription(*p.Description)
		if err != nil {
			return nil, err
		}
		updates["description"] = description
	}
	if p.Visibility != nil {
		if err := validateVisibility(*p.Visibility); err != nil {
			return nil, err
		}
		updates["visibility"] = *p.Visibility
	}
	if p.CoverImage != nil {
		updates["cover_image"] = strings.TrimSpace(*p.CoverImage)
	}

	if len(updates) == 0 {
		return list, nil
	}

	if err := s.db.Model(list).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update list: %w", err)
	}
	return list, nil
}

// Delete removes the list and, in the same transaction, every membership
// referencing it. Books themselves are untouched.
func (s *Service) Delete(ownerID, listID uint) error {
	if _, err := s.getOwned(ownerID, listID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", listID).Delete(&entities.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.List{}, listID).Error
	})
}

// GetByID returns an owned list with its memberships ordered by position.
func (s *Service) GetByID(ownerID, listID uint) (*entities.List, error) {
	var list entities.List
	err := s.db.Preload("Memberships", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Memberships.Book").First(&list, listID).Error
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

// ListForOwner returns every list belonging to the owner, newest first.
func (s *Service) ListForOwner(ownerID uint) ([]entities.List, error) {
	var lists []entities.List
	err := s.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&lists).Error
	return lists, err
}

func (s *Service) getOwned(ownerID, listID uint) (*entities.List, error) {
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

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", shelferr.New(shelferr.KindValidation, "title is required")
	}
	if len(title) > MaxTitleLength {
		return "", shelferr.New(shelferr.KindValidation, "title must be at most %d characters", MaxTitleLength)
	}
	return title, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if len(description) > MaxDescriptionLength {
		return "", shelferr.New(shelferr.KindValidation, "description must be at most %d characters", MaxDescriptionLength)
	}
	return description, nil
}

func validateVisibility(v entities.Visibility) error {
	switch v {
	case entities.VisibilityPublic, entities.VisibilityPrivate, entities.VisibilityUnlisted:
		return nil
	}
	return shelferr.New(shelferr.KindValidation, "invalid visibility %q", v)
}

// validateTypeAndYear enforces that year is set iff the type is favorites_year
// and that it is a plain numeric token.
func validateTypeAndYear(t entities.ListType, year string) (string, error) {
	year = strings.TrimSpace(year)
	switch t {
	case entities.ListTypeStandard, entities.ListTypeFavoritesAll:
		if year != "" {
			return "", shelferr.New(shelferr.KindValidation, "year is only valid for yearly favorites lists")
		}
		return "", nil
	case entities.ListTypeFavoritesYear:
		if year == "" {
			return "", shelferr.New(shelferr.KindValidation, "year is required for yearly favorites lists")
		}
		if _, err := strconv.Atoi(year); err != nil {
			return "", shelferr.New(shelferr.KindValidation, "year must be numeric, got %q", year)
		}
		return year, nil
	}
	return "", shelferr.New(shelferr.KindValidation, "invalid list type %q", t)
}
