package cli

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/okatkov/shelfmark/internal/auth"
	"github.com/okatkov/shelfmark/internal/config"
	"github.com/okatkov/shelfmark/internal/database"
	"github.com/okatkov/shelfmark/internal/entities"
)

// CreateUserCommand creates a user account from the command line, for
// bootstrapping an administrator before the HTTP API is reachable.
type CreateUserCommand struct {
	Username     string
	Email        string
	Role         string
	DatabasePath string
	WithToken    bool
}

// NewCreateUserCommand creates a new CreateUserCommand
func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

// ParseFlags parses command line flags
func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address for the new account (required)")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleAdmin), "Role for the new account: admin, editor or viewer")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.WithToken, "with-token", false, "Also generate an API token for the new account")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account. The password is read interactively.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Create an administrator:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username alice -email alice@example.com\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Create a read-only account with an API token:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username bot -email bot@example.com -role viewer -with-token\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Email == "" {
		fs.Usage()
		return fmt.Errorf("both -username and -email are required")
	}

	return nil
}

// Run executes the create-user command
func (cmd *CreateUserCommand) Run() error {
	role := entities.UserRole(cmd.Role)
	switch role {
	case entities.UserRoleAdmin, entities.UserRoleEditor, entities.UserRoleViewer:
	default:
		return fmt.Errorf("invalid role %q: must be admin, editor or viewer", cmd.Role)
	}

	password, err := readPassword()
	if err != nil {
		return err
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

	cfg := config.NewConfig()
	authService := auth.NewService(db.DB, cfg.Auth)

	user, err := authService.CreateUser(cmd.Username, cmd.Email, password, role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("Created user %q (id=%d, role=%s)\n", user.Username, user.ID, user.Role)

	if cmd.WithToken {
		token, err := authService.GenerateToken(user.ID)
		if err != nil {
			return fmt.Errorf("failed to generate API token: %w", err)
		}
		fmt.Printf("API token (shown once, store it now): %s\n", token)
	}

	return nil
}

// readPassword prompts for a password twice, without echoing when stdin is a
// terminal.
func readPassword() (string, error) {
	first, err := promptPassword("Password: ")
	if err != nil {
		return "", err
	}
	second, err := promptPassword("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passwords do not match")
	}
	return first, nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}
	// Piped input (tests, scripts)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
