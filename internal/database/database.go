// Package database owns the SQLite connection, schema migration and the
// small amount of CRUD that does not belong to a domain service: the book
// catalog and shared transaction plumbing.
package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/shelferr"
)

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.List{},
		&entities.Membership{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTransaction runs fn inside a single transaction, rolling back on error.
func (d *Database) WithTransaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}

func (d *Database) CreateBook(book *entities.Book) error {
	return d.DB.Create(book).Error
}

func (d *Database) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shelferr.New(shelferr.KindNotFound, "book %d not found", id)
		}
		return nil, err
	}
	return &book, nil
}

func (d *Database) GetBooksForOwner(ownerID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.Where("owner_id = ?", ownerID).Order("title ASC").Find(&books).Error
	return books, err
}

// DeleteBook removes a book and every membership referencing it in one
// transaction. Only the owner may delete.
func (d *Database) DeleteBook(ownerID, bookID uint) error {
	book, err := d.GetBookByID(bookID)
	if err != nil {
		return err
	}
	if book.OwnerID != ownerID {
		return shelferr.New(shelferr.KindOwnership, "book %d is not owned by the caller", bookID)
	}

	return d.WithTransaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&entities.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, bookID).Error
	})
}

func (d *Database) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := d.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetStatsForOwner(ownerID uint) (totalBooks int64, totalLists int64, err error) {
	err = d.DB.Model(&entities.Book{}).Where("owner_id = ?", ownerID).Count(&totalBooks).Error
	if err != nil {
		return
	}
	err = d.DB.Model(&entities.List{}).Where("owner_id = ?", ownerID).Count(&totalLists).Error
	return
}
