package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okatkov/shelfmark/internal/config"
	"github.com/okatkov/shelfmark/internal/database"
	"github.com/okatkov/shelfmark/internal/memberships"
)

// CompactListsCommand renumbers membership positions of standard lists so
// that they are evenly spaced again after repeated removals.
type CompactListsCommand struct {
	DatabasePath string
	ListID       uint
	Verbose      bool
}

// NewCompactListsCommand creates a new CompactListsCommand
func NewCompactListsCommand() *CompactListsCommand {
	return &CompactListsCommand{}
}

// ParseFlags parses command line flags
func (cmd *CompactListsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("compact-lists", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	listID := fs.Uint("list", 0, "Compact only this list ID (default: all standard lists)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Log every compacted list")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s compact-lists [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Renumber membership positions of standard lists to multiples of %d.\n", memberships.PositionStep)
		fmt.Fprintf(os.Stderr, "Favorites lists are never touched: their positions encode slots.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.ListID = uint(*listID)
	return nil
}

// Run executes the compact-lists command
func (cmd *CompactListsCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	svc := memberships.NewService(db.DB)

	if cmd.ListID != 0 {
		if err := svc.Compact(cmd.ListID); err != nil {
			return fmt.Errorf("failed to compact list %d: %w", cmd.ListID, err)
		}
		fmt.Printf("Compacted list %d\n", cmd.ListID)
		return nil
	}

	ids, err := svc.StandardListIDs()
	if err != nil {
		return fmt.Errorf("failed to collect list IDs: %w", err)
	}

	var failed int
	for _, id := range ids {
		if err := svc.Compact(id); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Error: failed to compact list %d: %v\n", id, err)
			continue
		}
		if cmd.Verbose {
			fmt.Printf("Compacted list %d\n", id)
		}
	}

	fmt.Printf("Compacted %d of %d lists\n", len(ids)-failed, len(ids))
	if failed > 0 {
		return fmt.Errorf("%d lists failed to compact", failed)
	}
	return nil
}
