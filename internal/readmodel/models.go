// Package readmodel decodes store documents into the projections the views render.
package readmodel

import (
	"time"

	"github.com/example/supermall/internal/infrastructure/store"
)

// Placeholder images used when a document has no upload.
const (
	PlaceholderLogo        = "/placeholder.svg?height=200&width=200"
	PlaceholderCover       = "/placeholder.svg?height=200&width=400"
	PlaceholderDetailCover = "/placeholder.svg?height=400&width=1200"
	PlaceholderProduct     = "/placeholder.svg?height=300&width=300"
)

// User types
const (
	UserTypeCustomer = "customer"
	UserTypeMerchant = "merchant"
)

// Shop is the read model for shops
type Shop struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Location     string     `json:"location"`
	Category     string     `json:"category"`
	Floor        string     `json:"floor,omitempty"`
	LogoURL      string     `json:"logoUrl"`
	CoverURL     string     `json:"coverUrl"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	Website      string     `json:"website,omitempty"`
	OwnerID      string     `json:"ownerId"`
	OwnerEmail   string     `json:"ownerEmail,omitempty"`
	IsActive     bool       `json:"isActive"`
	ProductCount int        `json:"productCount"`
	OfferCount   int        `json:"offerCount"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`

	hasCover bool
}

// Product is the read model for products
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Stock       int        `json:"stock"`
	IsActive    bool       `json:"isActive"`
	ImageURL    string     `json:"imageUrl"`
	ShopID      string     `json:"shopId"`
	ShopName    string     `json:"shopName"`
	OwnerID     string     `json:"ownerId"`
	Features    Features   `json:"features"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Offer is the read model for offers
type Offer struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Discount    float64    `json:"discount"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	IsActive    bool       `json:"isActive"`
	ShopID      string     `json:"shopId"`
	ShopName    string     `json:"shopName"`
	OwnerID     string     `json:"ownerId"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// UserProfile is the users document backing the dashboard and the admin gate
type UserProfile struct {
	ID          string `json:"id"`
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	UserType    string `json:"userType"`
	IsAdmin     bool   `json:"isAdmin"`
}

func DecodeShop(doc store.Document) Shop {
	f := doc.Fields
	s := Shop{
		ID:           doc.ID,
		Name:         str(f, "name"),
		Description:  str(f, "description"),
		Location:     str(f, "location"),
		Category:     str(f, "category"),
		Floor:        str(f, "floor"),
		LogoURL:      str(f, "logoUrl"),
		CoverURL:     str(f, "coverUrl"),
		Phone:        str(f, "phone"),
		Email:        str(f, "email"),
		Website:      str(f, "website"),
		OwnerID:      str(f, "ownerId"),
		OwnerEmail:   str(f, "ownerEmail"),
		IsActive:     boolean(f, "isActive"),
		ProductCount: integer(f, "productCount"),
		OfferCount:   integer(f, "offerCount"),
		CreatedAt:    timestamp(f, store.FieldCreatedAt),
		UpdatedAt:    timestamp(f, store.FieldUpdatedAt),
	}
	if s.LogoURL == "" {
		s.LogoURL = PlaceholderLogo
	}
	s.hasCover = s.CoverURL != ""
	if !s.hasCover {
		s.CoverURL = PlaceholderCover
	}
	return s
}

// WithDetailCover swaps the listing cover placeholder for the wide detail one.
func (s Shop) WithDetailCover() Shop {
	if !s.hasCover {
		s.CoverURL = PlaceholderDetailCover
	}
	return s
}

// ShopKey identifies a shop within a listing
func ShopKey(s Shop) string { return s.ID }

func DecodeProduct(doc store.Document) Product {
	f := doc.Fields
	p := Product{
		ID:          doc.ID,
		Name:        str(f, "name"),
		Description: str(f, "description"),
		Price:       float(f, "price"),
		Category:    str(f, "category"),
		Stock:       integer(f, "stock"),
		IsActive:    boolean(f, "isActive"),
		ImageURL:    str(f, "imageUrl"),
		ShopID:      str(f, "shopId"),
		ShopName:    str(f, "shopName"),
		OwnerID:     str(f, "ownerId"),
		CreatedAt:   timestamp(f, store.FieldCreatedAt),
		UpdatedAt:   timestamp(f, store.FieldUpdatedAt),
	}
	if m, ok := f["features"].(map[string]any); ok {
		p.Features = FeaturesFromMap(m)
	}
	if p.ImageURL == "" {
		p.ImageURL = PlaceholderProduct
	}
	return p
}

// ProductKey identifies a product within a listing
func ProductKey(p Product) string { return p.ID }

func DecodeOffer(doc store.Document) Offer {
	f := doc.Fields
	o := Offer{
		ID:          doc.ID,
		Title:       str(f, "title"),
		Description: str(f, "description"),
		Discount:    float(f, "discount"),
		IsActive:    boolean(f, "isActive"),
		ShopID:      str(f, "shopId"),
		ShopName:    str(f, "shopName"),
		OwnerID:     str(f, "ownerId"),
		CreatedAt:   timestamp(f, store.FieldCreatedAt),
	}
	if t := timestamp(f, "startDate"); t != nil {
		o.StartDate = *t
	}
	if t := timestamp(f, "endDate"); t != nil {
		o.EndDate = *t
	}
	return o
}

// OfferKey identifies an offer within a listing
func OfferKey(o Offer) string { return o.ID }

// CurrentlyValid reports whether the offer is redeemable at now
func (o Offer) CurrentlyValid(now time.Time) bool {
	if !o.IsActive || o.EndDate.Before(o.StartDate) {
		return false
	}
	return !now.Before(o.StartDate) && !now.After(o.EndDate)
}

func DecodeUserProfile(doc store.Document) UserProfile {
	f := doc.Fields
	u := UserProfile{
		ID:          doc.ID,
		UID:         str(f, "uid"),
		Email:       str(f, "email"),
		DisplayName: str(f, "displayName"),
		UserType:    str(f, "userType"),
		IsAdmin:     boolean(f, "isAdmin"),
	}
	if u.UID == "" {
		u.UID = doc.ID
	}
	if u.UserType == "" {
		u.UserType = UserTypeCustomer
	}
	return u
}
