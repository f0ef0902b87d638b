package domain

import "time"

// Rating aggregates review scores for a product.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Product represents a catalog entry. The query engine treats products as
// read-only; catalog writes happen through an ingestion pipeline this
// service does not own.
type Product struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Description      string    `json:"description" db:"description"`
	ShortDescription string    `json:"shortDescription" db:"short_description"`
	Price            int64     `json:"price" db:"price"`
	CompareAtPrice   *int64    `json:"compareAtPrice,omitempty" db:"compare_at_price"`
	Category         string    `json:"category" db:"category"`
	SubCategory      string    `json:"subCategory,omitempty" db:"sub_category"`
	Brand            string    `json:"brand" db:"brand"`
	Stock            int       `json:"stock" db:"stock"`
	IsNew            bool      `json:"isNew" db:"is_new"`
	IsBestseller     bool      `json:"isBestseller" db:"is_bestseller"`
	Featured         bool      `json:"featured" db:"featured"`
	Rating           Rating    `json:"rating"`
	WishlistCount    int       `json:"wishlistCount" db:"wishlist_count"`
	Tags             []string  `json:"tags,omitempty"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	PublishedAt      time.Time `json:"publishedAt" db:"published_at"`
}

// HasTag reports whether the product carries the given ingredient or
// attribute tag. Matching is case-insensitive only insofar as tags are
// stored lower-case; callers pass lower-case tokens.
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
