package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// GalleryExample is a before/after pair shown on the marketing site.
type GalleryExample struct {
	ID         uuid.UUID
	Title      string
	BeforePath string
	BeforeURL  string
	AfterPath  string
	AfterURL   string
	SortOrder  int
	CreatedAt  time.Time
}

type BlogPost struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Excerpt     sql.NullString
	Body        string
	CoverURL    sql.NullString
	Published   bool
	PublishedAt sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type HomepageImage struct {
	ID          uuid.UUID
	Title       sql.NullString
	StoragePath string
	StorageURL  string
	SortOrder   int
	CreatedAt   time.Time
}

// CompanyInfo is a single-row table backing the contact/legal blocks of the
// marketing site.
type CompanyInfo struct {
	Name      string
	Email     string
	Phone     sql.NullString
	Address   sql.NullString
	VATNumber sql.NullString
	UpdatedAt time.Time
}

// PricingSettings is a single-row table holding the current price per photo.
type PricingSettings struct {
	PricePerPhotoCents int64
	Currency           string
	UpdatedAt          time.Time
}
