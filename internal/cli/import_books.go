package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okatkov/shelfmark/internal/config"
	"github.com/okatkov/shelfmark/internal/database"
	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/importers"
	"github.com/okatkov/shelfmark/internal/lists"
	"github.com/okatkov/shelfmark/internal/memberships"
)

// ImportBooksCommand loads a Goodreads library export CSV into the catalog.
type ImportBooksCommand struct {
	FilePath     string
	DatabasePath string
	OwnerID      uint
	ListTitle    string
	Verbose      bool
}

// NewImportBooksCommand creates a new ImportBooksCommand
func NewImportBooksCommand() *ImportBooksCommand {
	return &ImportBooksCommand{}
}

// ParseFlags parses command line flags
func (cmd *ImportBooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-books", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the Goodreads CSV export (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	ownerID := fs.Uint("owner", 0, "Owner user ID for the imported books")
	fs.StringVar(&cmd.ListTitle, "list", "", "Append imported books to this list, creating it if needed")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Log per-row import errors")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-books -file <export.csv> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a Goodreads library export into the catalog.\n")
		fmt.Fprintf(os.Stderr, "Books already in the catalog are matched by ISBN or title+author and skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-books -file goodreads_library_export.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-books -file export.csv -list \"To Read\"\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.OwnerID = uint(*ownerID)

	if strings.TrimSpace(cmd.FilePath) == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}
	return nil
}

// Run executes the import-books command
func (cmd *ImportBooksCommand) Run() error {
	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open export file: %w", err)
	}
	defer file.Close()

	rows, parseErrors, err := importers.ParseGoodreadsCSV(file)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", cmd.FilePath, err)
	}
	for _, e := range parseErrors {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", e)
	}
	if len(rows) == 0 {
		fmt.Println("Nothing to import")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	manager := memberships.NewService(db.DB)

	var listID uint
	if cmd.ListTitle != "" {
		list, err := cmd.resolveList(db)
		if err != nil {
			return err
		}
		listID = list.ID
	}

	result, err := importers.NewPipeline(db, manager).Import(cmd.OwnerID, rows, listID)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if cmd.Verbose {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "Error: %s\n", e)
		}
	}

	fmt.Printf("Imported %d books (%d skipped as duplicates)\n", result.Created, result.Skipped)
	if listID != 0 {
		fmt.Printf("Appended %d books to %q\n", result.Appended, cmd.ListTitle)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d rows failed to import", len(result.Errors))
	}
	return nil
}

// resolveList finds the owner's standard list with the configured title,
// creating it when absent.
func (cmd *ImportBooksCommand) resolveList(db *database.Database) (*entities.List, error) {
	registry := lists.NewService(db.DB)

	owned, err := registry.ListForOwner(cmd.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	for i := range owned {
		if owned[i].Type == entities.ListTypeStandard && owned[i].Title == cmd.ListTitle {
			return &owned[i], nil
		}
	}

	list, err := registry.Create(cmd.OwnerID, lists.CreateParams{Title: cmd.ListTitle})
	if err != nil {
		return nil, fmt.Errorf("failed to create list %q: %w", cmd.ListTitle, err)
	}
	fmt.Printf("Created list %q (id %d)\n", list.Title, list.ID)
	return list, nil
}
