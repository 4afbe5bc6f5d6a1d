// Package domain holds what the write-side services share.
package domain

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/example/supermall/internal/auth"
	"github.com/example/supermall/internal/infrastructure/store"
	"github.com/example/supermall/internal/readmodel"
)

var (
	// ErrWriteFailed wraps store and object storage failures on writes.
	ErrWriteFailed  = errors.New("write failed")
	ErrShopNotFound = errors.New("shop not found")
	ErrNotShopOwner = errors.New("shop is owned by another merchant")
)

// Upload is a file received with a create request
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Present reports whether a file was actually sent
func (u *Upload) Present() bool {
	return u != nil && len(u.Data) > 0
}

// BaseName strips directories and whitespace from a client file name.
func (u *Upload) BaseName() string {
	name := strings.TrimSpace(path.Base(strings.ReplaceAll(u.Filename, `\`, "/")))
	if name == "." || name == "/" {
		return "upload"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// OwnedShop reads a shop and checks that the caller owns it.
func OwnedShop(ctx context.Context, st store.DocumentStore, owner auth.Identity, shopID string) (readmodel.Shop, error) {
	doc, err := st.Get(ctx, store.CollectionShops, shopID)
	if errors.Is(err, store.ErrNotFound) {
		return readmodel.Shop{}, ErrShopNotFound
	}
	if err != nil {
		return readmodel.Shop{}, fmt.Errorf("%w: read shop %s: %v", ErrWriteFailed, shopID, err)
	}

	shop := readmodel.DecodeShop(doc)
	if shop.OwnerID != owner.UserID {
		return readmodel.Shop{}, ErrNotShopOwner
	}
	return shop, nil
}
