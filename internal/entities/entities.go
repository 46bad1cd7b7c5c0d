package entities

import (
	"time"

	"gorm.io/gorm"
)

type ListType string

const (
	ListTypeStandard      ListType = "standard"
	ListTypeFavoritesAll  ListType = "favorites_all"
	ListTypeFavoritesYear ListType = "favorites_year"
)

// IsFavorites reports whether the list type carries the six-slot capacity limit.
func (t ListType) IsFavorites() bool {
	return t == ListTypeFavoritesAll || t == ListTypeFavoritesYear
}

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
	UserRoleViewer UserRole = "viewer"
)

// MaxFavoriteMembers is the hard capacity of any favorites-type list.
const MaxFavoriteMembers = 6

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string   `gorm:"size:128" json:"-"`
	Role         UserRole `gorm:"size:20;default:'editor'" json:"role"`

	// API token (only the hash is stored)
	TokenHash      string     `gorm:"index;size:64" json:"-"`
	TokenCreatedAt *time.Time `json:"-"`

	// Login tracking and lockout
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	OwnerID         uint           `gorm:"index" json:"owner_id"`
	Title           string         `gorm:"index;size:512" json:"title"`
	Author          string         `gorm:"index;size:256" json:"author"`
	ISBN            string         `gorm:"index;size:20" json:"isbn,omitempty"`
	CoverURL        string         `gorm:"size:2048" json:"cover_url,omitempty"`
	PublicationYear int            `json:"publication_year,omitempty"`
	Owner           User           `gorm:"foreignKey:OwnerID" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// List is an owned, named collection of books. Type and Year are fixed at
// creation; Year is set iff Type is favorites_year.
type List struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OwnerID     uint       `gorm:"index;index:idx_lists_owner_type_year" json:"owner_id"`
	Title       string     `gorm:"size:200" json:"title"`
	Description string     `gorm:"size:2000" json:"description,omitempty"`
	Visibility  Visibility `gorm:"size:16;default:'private'" json:"visibility"`
	Type        ListType   `gorm:"size:16;default:'standard';index:idx_lists_owner_type_year" json:"type"`
	Year        string     `gorm:"size:8;index:idx_lists_owner_type_year" json:"year,omitempty"`
	CoverImage  string     `gorm:"size:2048" json:"cover_image,omitempty"`

	Owner       User         `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships []Membership `gorm:"foreignKey:ListID" json:"memberships,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership joins one book to one list. The composite primary key makes a
// book appear at most once per list; Position is the ascending order key.
type Membership struct {
	ListID   uint   `gorm:"primaryKey;autoIncrement:false" json:"list_id"`
	BookID   uint   `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	Position int    `gorm:"index" json:"position"`
	Notes    string `gorm:"size:2000" json:"notes,omitempty"`

	// Pointer so an unloaded association is omitted from JSON instead of
	// serializing as a zero-valued book.
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (Book) TableName() string {
	return "books"
}

func (List) TableName() string {
	return "lists"
}

func (Membership) TableName() string {
	return "memberships"
}
