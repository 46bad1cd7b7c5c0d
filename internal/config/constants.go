package config

// Default filesystem locations
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./shelfmark.db"

	// DefaultCoversDir is where downloaded cover images are cached
	DefaultCoversDir = "./covers"
)
