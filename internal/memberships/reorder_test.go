package memberships

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/shelferr"
)

func positionsByBook(t *testing.T, db *gorm.DB, listID uint) map[uint]int {
	t.Helper()
	var memberships []entities.Membership
	require.NoError(t, db.Where("list_id = ?", listID).Find(&memberships).Error)
	result := make(map[uint]int, len(memberships))
	for _, m := range memberships {
		result[m.BookID] = m.Position
	}
	return result
}

func TestService_Reorder(t *testing.T) {
	t.Run("renumbers a full permutation", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		ids := make([]uint, 3)
		for i := range ids {
			book := createBook(t, db, 1, "Book")
			_, err := svc.Add(1, list.ID, book.ID, nil)
			require.NoError(t, err)
			ids[i] = book.ID
		}

		// Reverse the order
		require.NoError(t, svc.Reorder(1, list.ID, []uint{ids[2], ids[1], ids[0]}))

		positions := positionsByBook(t, db, list.ID)
		assert.Equal(t, 100, positions[ids[2]])
		assert.Equal(t, 200, positions[ids[1]])
		assert.Equal(t, 300, positions[ids[0]])
	})

	t.Run("rejects ids that are not members", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)
		book := createBook(t, db, 1, "A")
		_, err := svc.Add(1, list.ID, book.ID, nil)
		require.NoError(t, err)

		err = svc.Reorder(1, list.ID, []uint{book.ID, 999})
		assert.True(t, shelferr.IsKind(err, shelferr.KindInvalidMembers))

		// Positions untouched after the failure
		positions := positionsByBook(t, db, list.ID)
		assert.Equal(t, 100, positions[book.ID])
	})

	t.Run("rejects repeated ids", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		first := createBook(t, db, 1, "A")
		second := createBook(t, db, 1, "B")
		_, err := svc.Add(1, list.ID, first.ID, nil)
		require.NoError(t, err)
		_, err = svc.Add(1, list.ID, second.ID, nil)
		require.NoError(t, err)

		err = svc.Reorder(1, list.ID, []uint{first.ID, first.ID})
		assert.True(t, shelferr.IsKind(err, shelferr.KindInvalidMembers))
	})

	t.Run("rejects partial reorders", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		first := createBook(t, db, 1, "A")
		second := createBook(t, db, 1, "B")
		_, err := svc.Add(1, list.ID, first.ID, nil)
		require.NoError(t, err)
		_, err = svc.Add(1, list.ID, second.ID, nil)
		require.NoError(t, err)

		err = svc.Reorder(1, list.ID, []uint{second.ID})
		assert.True(t, shelferr.IsKind(err, shelferr.KindIncompleteReorder))
	})

	t.Run("empty reorder of empty list succeeds", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		require.NoError(t, svc.Reorder(1, list.ID, nil))
	})

	t.Run("rejects reorder by non-owner", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 2, entities.ListTypeStandard)

		err := svc.Reorder(1, list.ID, nil)
		assert.True(t, shelferr.IsKind(err, shelferr.KindOwnership))
	})
}

func TestService_Compact(t *testing.T) {
	t.Run("closes gaps in current order", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeStandard)

		ids := make([]uint, 4)
		for i := range ids {
			book := createBook(t, db, 1, "Book")
			_, err := svc.Add(1, list.ID, book.ID, nil)
			require.NoError(t, err)
			ids[i] = book.ID
		}
		require.NoError(t, svc.Remove(1, list.ID, ids[0]))
		require.NoError(t, svc.Remove(1, list.ID, ids[2]))

		require.NoError(t, svc.Compact(list.ID))

		positions := positionsByBook(t, db, list.ID)
		assert.Equal(t, 100, positions[ids[1]])
		assert.Equal(t, 200, positions[ids[3]])
	})

	t.Run("leaves favorites lists untouched", func(t *testing.T) {
		svc, db := setupTestService(t)
		list := createList(t, db, 1, entities.ListTypeFavoritesAll)
		book := createBook(t, db, 1, "A")

		// Slot 5 stored as position 500
		require.NoError(t, db.Create(&entities.Membership{ListID: list.ID, BookID: book.ID, Position: 500}).Error)

		require.NoError(t, svc.Compact(list.ID))

		positions := positionsByBook(t, db, list.ID)
		assert.Equal(t, 500, positions[book.ID])
	})
}

func TestService_StandardListIDs(t *testing.T) {
	svc, db := setupTestService(t)

	standard := createList(t, db, 1, entities.ListTypeStandard)
	createList(t, db, 1, entities.ListTypeFavoritesAll)

	ids, err := svc.StandardListIDs()
	require.NoError(t, err)
	assert.Equal(t, []uint{standard.ID}, ids)
}
