// Command generate_demo creates a demo database with sample public domain
// books, a couple of reading lists and a filled favorites list.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"

	"github.com/okatkov/shelfmark/internal/database"
	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/favorites"
	"github.com/okatkov/shelfmark/internal/lists"
	"github.com/okatkov/shelfmark/internal/memberships"
)

const defaultDemoDatabasePath = "./demo/demo.db"

// demoOwnerID matches the default owner used when auth is disabled.
const demoOwnerID = 0

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	books := seedBooks(db)
	seedLists(db, books)

	log.Println("Demo database generated successfully!")
}

func seedBooks(db *database.Database) map[string]*entities.Book {
	demoBooks := []entities.Book{
		{Title: "Meditations", Author: "Marcus Aurelius", ISBN: "9780140449334", PublicationYear: 180},
		{Title: "Frankenstein", Author: "Mary Shelley", ISBN: "9780486282114", PublicationYear: 1818},
		{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "9780141439518", PublicationYear: 1813},
		{Title: "Moby-Dick", Author: "Herman Melville", ISBN: "9780142437247", PublicationYear: 1851},
		{Title: "The Time Machine", Author: "H. G. Wells", ISBN: "9780451470706", PublicationYear: 1895},
		{Title: "The Picture of Dorian Gray", Author: "Oscar Wilde", ISBN: "9780141439570", PublicationYear: 1890},
		{Title: "Crime and Punishment", Author: "Fyodor Dostoevsky", ISBN: "9780140449136", PublicationYear: 1866},
		{Title: "Walden", Author: "Henry David Thoreau", ISBN: "9780691096124", PublicationYear: 1854},
	}

	books := make(map[string]*entities.Book, len(demoBooks))
	for i := range demoBooks {
		book := demoBooks[i]
		book.OwnerID = demoOwnerID
		if err := db.CreateBook(&book); err != nil {
			log.Printf("Failed to save book %s: %v", book.Title, err)
			continue
		}
		log.Printf("Saved: %s by %s", book.Title, book.Author)
		books[book.Title] = &book
	}
	return books
}

func seedLists(db *database.Database, books map[string]*entities.Book) {
	registry := lists.NewService(db.DB)
	manager := memberships.NewService(db.DB)
	mapper := favorites.NewService(db.DB)

	classics, err := registry.Create(demoOwnerID, lists.CreateParams{
		Title:       "Classics to Revisit",
		Description: "Public domain staples worth a second read.",
		Visibility:  entities.VisibilityPublic,
	})
	if err != nil {
		log.Fatalf("Failed to create demo list: %v", err)
	}
	for _, title := range []string{"Meditations", "Moby-Dick", "Walden", "Frankenstein"} {
		if book, ok := books[title]; ok {
			if _, err := manager.Add(demoOwnerID, classics.ID, book.ID, nil); err != nil {
				log.Printf("Failed to add %s to %s: %v", title, classics.Title, err)
			}
		}
	}
	if book, ok := books["Moby-Dick"]; ok {
		if _, err := manager.UpdateNotes(demoOwnerID, classics.ID, book.ID, "Skip nothing, even the whaling chapters."); err != nil {
			log.Printf("Failed to set notes: %v", err)
		}
	}

	sciFi, err := registry.Create(demoOwnerID, lists.CreateParams{
		Title:      "Early Science Fiction",
		Visibility: entities.VisibilityUnlisted,
	})
	if err != nil {
		log.Fatalf("Failed to create demo list: %v", err)
	}
	for _, title := range []string{"The Time Machine", "Frankenstein"} {
		if book, ok := books[title]; ok {
			if _, err := manager.Add(demoOwnerID, sciFi.ID, book.ID, nil); err != nil {
				log.Printf("Failed to add %s to %s: %v", title, sciFi.Title, err)
			}
		}
	}

	// Favorites: the list is created implicitly on the first assignment
	favoriteSlots := []struct {
		title string
		slot  int
	}{
		{"Meditations", 1},
		{"Crime and Punishment", 2},
		{"Pride and Prejudice", 3},
	}
	for _, f := range favoriteSlots {
		if book, ok := books[f.title]; ok {
			if _, err := mapper.Set(demoOwnerID, book.ID, f.slot, ""); err != nil {
				log.Printf("Failed to set favorite %s: %v", f.title, err)
			}
		}
	}
	if book, ok := books["The Time Machine"]; ok {
		if _, err := mapper.Set(demoOwnerID, book.ID, 1, "2024"); err != nil {
			log.Printf("Failed to set yearly favorite: %v", err)
		}
	}

	log.Printf("Created %d demo lists and a favorites list", 2)
}
