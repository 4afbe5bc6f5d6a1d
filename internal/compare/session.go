package compare

import (
	"context"
	"sync"

	"github.com/example/supermall/internal/listing"
	"github.com/example/supermall/internal/logging"
	"github.com/example/supermall/internal/readmodel"
	"go.uber.org/zap"
)

// Catalog is the part of the catalog service the compare view reads.
type Catalog interface {
	CategorySample(ctx context.Context) ([]readmodel.Product, error)
	CompareProductSource(category string) listing.Source[readmodel.Product]
}

// Session is one user's compare view: categories, the active category's
// candidate products and the current selection.
type Session struct {
	catalog Catalog
	logger  *zap.Logger

	mu         sync.Mutex
	categories []string
	active     string
	products   *listing.Listing[readmodel.Product]
	selection  Selection
}

func NewSession(c Catalog, logger *zap.Logger) *Session {
	return &Session{catalog: c, logger: logging.Module(logger, "Compare")}
}

// Open discovers the categories and selects the first one.
func (s *Session) Open(ctx context.Context) error {
	sample, err := s.catalog.CategorySample(ctx)
	if err != nil {
		return err
	}
	categories := DiscoverCategories(sample)

	s.mu.Lock()
	s.categories = categories
	s.mu.Unlock()

	s.logger.Info("categories discovered", zap.Int("count", len(categories)), zap.Int("sampled", len(sample)))
	if len(categories) == 0 {
		return nil
	}
	return s.SelectCategory(ctx, categories[0])
}

// SelectCategory clears the selection and loads a fresh first page of the
// category's products. The previous listing is discarded.
func (s *Session) SelectCategory(ctx context.Context, category string) error {
	l := listing.New(s.catalog.CompareProductSource(category), readmodel.ProductKey, s.logger)

	s.mu.Lock()
	if s.products != nil {
		s.products.Close()
	}
	s.active = category
	s.products = l
	s.selection.Clear()
	s.mu.Unlock()

	return l.Load(ctx)
}

// LoadMore fetches more candidates for the active category.
func (s *Session) LoadMore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	l := s.products
	s.mu.Unlock()
	if l == nil {
		return false, nil
	}
	return l.LoadMore(ctx)
}

// Toggle flips a candidate in or out of the selection.
func (s *Session) Toggle(p readmodel.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.selection.Toggle(p)
	if !changed {
		s.logger.Debug("selection full", zap.String("product_id", p.ID))
	}
	return changed
}

// ToggleID toggles a loaded candidate by id. It reports false when the id
// is not among the loaded products or the selection is full.
func (s *Session) ToggleID(id string) bool {
	for _, p := range s.Products() {
		if p.ID == id {
			return s.Toggle(p)
		}
	}
	return false
}

func (s *Session) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Session) ActiveCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Products returns the loaded candidates of the active category.
func (s *Session) Products() []readmodel.Product {
	s.mu.Lock()
	l := s.products
	s.mu.Unlock()
	if l == nil {
		return nil
	}
	return l.Items()
}

func (s *Session) HasMore() bool {
	s.mu.Lock()
	l := s.products
	s.mu.Unlock()
	return l != nil && l.HasMore()
}

func (s *Session) Selected() []readmodel.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Items()
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
}

// Matrix builds the comparison of the current selection.
func (s *Session) Matrix() Matrix {
	return BuildMatrix(s.Selected())
}

// Close discards the session's listing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.products != nil {
		s.products.Close()
	}
}
