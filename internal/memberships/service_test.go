package memberships

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/shelferr"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{}, &entities.List{}, &entities.Membership{})
	require.NoError(t, err)

	return NewService(db), db
}

func createList(t *testing.T, db *gorm.DB, ownerID uint, listType entities.ListType) *entities.List {
	t.Helper()
	list := &entities.List{OwnerID: ownerID, Title: "Test List", Type: listType}
	require.NoError(t, db.Create(list).Error)
	return list
}

func createBook(t *testing.T, db *gorm.DB, ownerID uint, title string) *entities.Book {
	t.Helper()
	book := &entities.Book{OwnerID: ownerID, Title: title}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestService_Add(t *testing.T) {
	t.Run("appends with position gaps", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		for i, title := range []string{"A", "B", "C"} {
			book := createBook(t, db, 1, title)
			m, err := svc.Add(1, list.ID, book.ID, nil)
			require.NoError(t, err)
			assert.Equal(t, (i+1)*PositionStep, m.Position)
		}
	})

	t.Run("honors explicit position", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")

		position := 150
		m, err := svc.Add(1, list.ID, book.ID, &position)
		require.NoError(t, err)
		assert.Equal(t, 150, m.Position)
	})

	t.Run("appends after highest explicit position", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		first := createBook(t, db, 1, "A")
		position := 730
		_, err := svc.Add(1, list.ID, first.ID, &position)
		require.NoError(t, err)

		second := createBook(t, db, 1, "B")
		m, err := svc.Add(1, list.ID, second.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 730+PositionStep, m.Position)
	})

	t.Run("rejects negative position", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")

		position := -1
		_, err := svc.Add(1, list.ID, book.ID, &position)
		assert.True(t, shelferr.IsKind(err, shelferr.KindValidation))
	})

	t.Run("rejects duplicate membership", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")

		_, err := svc.Add(1, list.ID, book.ID, nil)
		require.NoError(t, err)

		_, err = svc.Add(1, list.ID, book.ID, nil)
		assert.True(t, shelferr.IsKind(err, shelferr.KindDuplicate))
	})

	t.Run("same book joins multiple lists", func(t *testing.T) {
		svc, db := setupTestService(t)
		first := createList(t, db, 1, entities.ListTypeStandard)
		second := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")

		_, err := svc.Add(1, first.ID, book.ID, nil)
		require.NoError(t, err)
		_, err = svc.Add(1, second.ID, book.ID, nil)
		require.NoError(t, err)
	})

	t.Run("enforces capacity on favorites lists", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeFavoritesAll)

		for i := 0; i < entities.MaxFavoriteMembers; i++ {
			book := createBook(t, db, 1, "Book")
			_, err := svc.Add(1, list.ID, book.ID, nil)
			require.NoError(t, err)
		}

		extra := createBook(t, db, 1, "Seventh")
		_, err := svc.Add(1, list.ID, extra.ID, nil)
		assert.True(t, shelferr.IsKind(err, shelferr.KindCapacity))
	})

	t.Run("standard lists have no capacity limit", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		for i := 0; i < entities.MaxFavoriteMembers+3; i++ {
			book := createBook(t, db, 1, "Book")
			_, err := svc.Add(1, list.ID, book.ID, nil)
			require.NoError(t, err)
		}
	})

	t.Run("rejects books owned by someone else", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 2, "Not yours")

		_, err := svc.Add(1, list.ID, book.ID, nil)
		assert.True(t, shelferr.IsKind(err, shelferr.KindOwnership))
	})

	t.Run("rejects lists owned by someone else", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 2, entities.ListTypeStandard)
		book := createBook(t, db, 1, "Mine")

		_, err := svc.Add(1, list.ID, book.ID, nil)
		assert.True(t, shelferr.IsKind(err, shelferr.KindOwnership))
	})

	t.Run("returns not found for missing book", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		_, err := svc.Add(1, list.ID, 999, nil)
		assert.True(t, shelferr.IsKind(err, shelferr.KindNotFound))
	})
}

func TestService_Remove(t *testing.T) {
	t.Run("removes without renumbering survivors", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		books := make([]*entities.Book, 3)
		for i := range books {
			books[i] = createBook(t, db, 1, "Book")
			_, err := svc.Add(1, list.ID, books[i].ID, nil)
			require.NoError(t, err)
		}

		require.NoError(t, svc.Remove(1, list.ID, books[1].ID))

		var remaining []entities.Membership
		require.NoError(t, db.Where("list_id = ?", list.ID).Order("position ASC").Find(&remaining).Error)
		require.Len(t, remaining, 2)
		assert.Equal(t, 100, remaining[0].Position)
		assert.Equal(t, 300, remaining[1].Position)
	})

	t.Run("second removal returns not found", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")

		_, err := svc.Add(1, list.ID, book.ID, nil)
		require.NoError(t, err)

		require.NoError(t, svc.Remove(1, list.ID, book.ID))
		err = svc.Remove(1, list.ID, book.ID)
		assert.True(t, shelferr.IsKind(err, shelferr.KindNotFound))
	})

	t.Run("rejects removal by non-owner", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")

		_, err := svc.Add(1, list.ID, book.ID, nil)
		require.NoError(t, err)

		err = svc.Remove(2, list.ID, book.ID)
		assert.True(t, shelferr.IsKind(err, shelferr.KindOwnership))
	})
}

func TestService_UpdateNotes(t *testing.T) {
	t.Run("sets and trims notes", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")
		_, err := svc.Add(1, list.ID, book.ID, nil)
		require.NoError(t, err)

		m, err := svc.UpdateNotes(1, list.ID, book.ID, "  re-read chapter 3  ")
		require.NoError(t, err)
		assert.Equal(t, "re-read chapter 3", m.Notes)
	})

	t.Run("whitespace-only notes clear the field", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")
		_, err := svc.Add(1, list.ID, book.ID, nil)
		require.NoError(t, err)

		_, err = svc.UpdateNotes(1, list.ID, book.ID, "something")
		require.NoError(t, err)

		m, err := svc.UpdateNotes(1, list.ID, book.ID, "   ")
		require.NoError(t, err)
		assert.Empty(t, m.Notes)
	})

	t.Run("rejects overlong notes", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")
		_, err := svc.Add(1, list.ID, book.ID, nil)
		require.NoError(t, err)

		_, err = svc.UpdateNotes(1, list.ID, book.ID, strings.Repeat("x", MaxNotesLength+1))
		assert.True(t, shelferr.IsKind(err, shelferr.KindValidation))
	})

	t.Run("returns not found for non-member book", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")

		_, err := svc.UpdateNotes(1, list.ID, book.ID, "note")
		assert.True(t, shelferr.IsKind(err, shelferr.KindNotFound))
	})
}
