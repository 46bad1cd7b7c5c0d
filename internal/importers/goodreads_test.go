package importers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `Title,Author,ISBN,ISBN13,Year Published,My Rating
Moby-Dick,Herman Melville,"=""0142437247""","=""9780142437247""",1851,5
Walden,Henry David Thoreau,"=""""","=""9780691096124""",1854,4
Untitled Manuscript,Anonymous,,,,0
`

func TestParseGoodreadsCSV(t *testing.T) {
	t.Run("parses a library export", func(t *testing.T) {
		rows, parseErrors, err := ParseGoodreadsCSV(strings.NewReader(sampleExport))
		require.NoError(t, err)
		assert.Empty(t, parseErrors)
		require.Len(t, rows, 3)

		assert.Equal(t, "Moby-Dick", rows[0].Title)
		assert.Equal(t, "Herman Melville", rows[0].Author)
		assert.Equal(t, "9780142437247", rows[0].ISBN) // ISBN13 wins over ISBN
		assert.Equal(t, 1851, rows[0].PublicationYear)

		assert.Equal(t, "9780691096124", rows[1].ISBN)
		assert.Empty(t, rows[2].ISBN)
	})

	t.Run("missing required header", func(t *testing.T) {
		_, _, err := ParseGoodreadsCSV(strings.NewReader("ISBN,Year Published\n123,1999\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "title")
	})

	t.Run("empty title is reported, not fatal", func(t *testing.T) {
		input := "Title,Author\n,Somebody\nWalden,Thoreau\n"
		rows, parseErrors, err := ParseGoodreadsCSV(strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, parseErrors, 1)
		require.Len(t, rows, 1)
		assert.Equal(t, "Walden", rows[0].Title)
	})

	t.Run("short records do not panic", func(t *testing.T) {
		input := "Title,Author,ISBN13\nWalden,Thoreau\n"
		rows, _, err := ParseGoodreadsCSV(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Empty(t, rows[0].ISBN)
	})
}

func TestCleanGoodreadsISBN(t *testing.T) {
	assert.Equal(t, "9780142437247", cleanGoodreadsISBN(`="9780142437247"`))
	assert.Equal(t, "014243724X", cleanGoodreadsISBN("014243724x"))
	assert.Empty(t, cleanGoodreadsISBN(`=""`))
	assert.Empty(t, cleanGoodreadsISBN("12345")) // wrong length
}
