package importers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GoodreadsRow is one book from a Goodreads library export.
type GoodreadsRow struct {
	Title           string
	Author          string
	ISBN            string
	PublicationYear int
}

// ParseGoodreadsCSV parses a Goodreads "library export" CSV file.
// Returns the parsed rows, per-line parse errors, and a fatal error when the
// file itself is unreadable.
func ParseGoodreadsCSV(r io.Reader) ([]GoodreadsRow, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	requiredHeaders := []string{"title", "author"}
	for _, h := range requiredHeaders {
		if _, ok := headerIndex[h]; !ok {
			return nil, nil, fmt.Errorf("missing required header: %s", h)
		}
	}

	var rows []GoodreadsRow
	var parseErrors []string
	lineNum := 1 // header already consumed

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("Line %d: %v", lineNum, err))
			continue
		}

		row := GoodreadsRow{
			Title:  getCSVValue(record, headerIndex, "title"),
			Author: getCSVValue(record, headerIndex, "author"),
		}

		// Goodreads prefers ISBN13 but older exports only carry ISBN.
		row.ISBN = cleanGoodreadsISBN(getCSVValue(record, headerIndex, "isbn13"))
		if row.ISBN == "" {
			row.ISBN = cleanGoodreadsISBN(getCSVValue(record, headerIndex, "isbn"))
		}

		if year := getCSVValue(record, headerIndex, "year published"); year != "" {
			if y, err := strconv.Atoi(year); err == nil {
				row.PublicationYear = y
			}
		}

		if strings.TrimSpace(row.Title) == "" {
			parseErrors = append(parseErrors, fmt.Sprintf("Line %d: empty title", lineNum))
			continue
		}

		rows = append(rows, row)
	}

	return rows, parseErrors, nil
}

// getCSVValue safely reads a named column from a record.
func getCSVValue(record []string, headerIndex map[string]int, key string) string {
	idx, ok := headerIndex[key]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// cleanGoodreadsISBN strips the `="..."` wrapper Goodreads uses to stop
// spreadsheets from mangling ISBNs into numbers.
func cleanGoodreadsISBN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "=")
	s = strings.Trim(s, `"`)
	if s == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == 'X' || r == 'x' {
			digits.WriteRune(r)
		}
	}
	cleaned := strings.ToUpper(digits.String())
	if len(cleaned) != 10 && len(cleaned) != 13 {
		return ""
	}
	return cleaned
}
