// Package seed loads a YAML catalog into a document store for demos and
// local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/readmodel"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File is the root of a seed document
type File struct {
	Users []User `yaml:"users"`
	Shops []Shop `yaml:"shops"`
}

type User struct {
	UID         string `yaml:"uid"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"displayName"`
	UserType    string `yaml:"userType"`
	IsAdmin     bool   `yaml:"isAdmin"`
}

// Shop carries its products and offers inline so no ids are needed.
type Shop struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Location    string     `yaml:"location"`
	Category    string     `yaml:"category"`
	Floor       string     `yaml:"floor"`
	LogoURL     string     `yaml:"logoUrl"`
	CoverURL    string     `yaml:"coverUrl"`
	OwnerID     string     `yaml:"ownerId"`
	OwnerEmail  string     `yaml:"ownerEmail"`
	Inactive    bool       `yaml:"inactive"`
	CreatedAt   *time.Time `yaml:"createdAt"`
	Products    []Product  `yaml:"products"`
	Offers      []Offer    `yaml:"offers"`
}

type Product struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Price       float64    `yaml:"price"`
	Category    string     `yaml:"category"`
	Stock       int        `yaml:"stock"`
	ImageURL    string     `yaml:"imageUrl"`
	Inactive    bool       `yaml:"inactive"`
	CreatedAt   *time.Time `yaml:"createdAt"`
	Features    Features   `yaml:"features"`
}

type Offer struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Discount    float64   `yaml:"discount"`
	StartDate   time.Time `yaml:"startDate"`
	EndDate     time.Time `yaml:"endDate"`
	Inactive    bool      `yaml:"inactive"`
}

// Features keeps the key order written in the YAML mapping.
type Features struct {
	readmodel.Features
}

func (f *Features) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: features must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: feature %q must be a scalar", val.Line, key.Value)
		}
		var raw any
		if err := val.Decode(&raw); err != nil {
			return fmt.Errorf("line %d: feature %q: %w", val.Line, key.Value, err)
		}
		f.Set(key.Value, readmodel.FeatureValueOf(raw))
	}
	return nil
}

// Result counts what Apply wrote
type Result struct {
	Users    int
	Shops    int
	Products int
	Offers   int
}

// Load decodes a seed document, rejecting unknown keys.
func Load(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	return f, nil
}

// LoadFile opens and decodes path
func LoadFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer fh.Close()
	return Load(fh)
}

// Apply writes every user, shop, product and offer in f. Shop counters are
// set from the inline lists, so the count projector should not replay
// these writes.
func Apply(ctx context.Context, st store.DocumentStore, f File, logger *zap.Logger) (Result, error) {
	log := logger.With(zap.String("module", "Seed"))
	var res Result

	for _, u := range f.Users {
		fields := map[string]any{
			"uid":         u.UID,
			"email":       u.Email,
			"displayName": u.DisplayName,
			"userType":    u.UserType,
			"isAdmin":     u.IsAdmin,
		}
		if _, err := st.Add(ctx, store.CollectionUsers, fields); err != nil {
			return res, fmt.Errorf("add user %s: %w", u.UID, err)
		}
		res.Users++
	}

	for _, s := range f.Shops {
		fields := map[string]any{
			"name":         s.Name,
			"description":  s.Description,
			"location":     s.Location,
			"category":     s.Category,
			"floor":        s.Floor,
			"logoUrl":      s.LogoURL,
			"coverUrl":     s.CoverURL,
			"ownerId":      s.OwnerID,
			"ownerEmail":   s.OwnerEmail,
			"isActive":     !s.Inactive,
			"productCount": len(s.Products),
			"offerCount":   len(s.Offers),
		}
		stamp(fields, s.CreatedAt)

		shopID, err := st.Add(ctx, store.CollectionShops, fields)
		if err != nil {
			return res, fmt.Errorf("add shop %q: %w", s.Name, err)
		}
		res.Shops++

		for _, p := range s.Products {
			category := p.Category
			if category == "" {
				category = s.Category
			}
			fields := map[string]any{
				"name":        p.Name,
				"description": p.Description,
				"price":       p.Price,
				"category":    category,
				"stock":       p.Stock,
				"imageUrl":    p.ImageURL,
				"isActive":    !p.Inactive,
				"shopId":      shopID,
				"shopName":    s.Name,
				"ownerId":     s.OwnerID,
				"features":    p.Features.Map(),
			}
			stamp(fields, p.CreatedAt)
			if _, err := st.Add(ctx, store.CollectionProducts, fields); err != nil {
				return res, fmt.Errorf("add product %q: %w", p.Name, err)
			}
			res.Products++
		}

		for _, o := range s.Offers {
			fields := map[string]any{
				"title":       o.Title,
				"description": o.Description,
				"discount":    o.Discount,
				"startDate":   o.StartDate.UTC(),
				"endDate":     o.EndDate.UTC(),
				"isActive":    !o.Inactive,
				"shopId":      shopID,
				"shopName":    s.Name,
				"ownerId":     s.OwnerID,
			}
			if _, err := st.Add(ctx, store.CollectionOffers, fields); err != nil {
				return res, fmt.Errorf("add offer %q: %w", o.Title, err)
			}
			res.Offers++
		}

		log.Debug("shop seeded", zap.String("shop_id", shopID), zap.String("name", s.Name))
	}

	log.Info("seed applied",
		zap.Int("users", res.Users),
		zap.Int("shops", res.Shops),
		zap.Int("products", res.Products),
		zap.Int("offers", res.Offers),
	)
	return res, nil
}

func stamp(fields map[string]any, at *time.Time) {
	if at == nil {
		return
	}
	fields[store.FieldCreatedAt] = at.UTC()
	fields[store.FieldUpdatedAt] = at.UTC()
}
