// Package artifacts loads and saves the trained model, its product mapping and the
// sales history as one immutable Bundle.
package artifacts

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/model"
)

// Files names the artifact files inside an artifact directory or bucket prefix.
type Files struct {
	Model        string
	ProductMap   string
	SalesHistory string
}

func DefaultFiles() Files {
	return Files{
		Model:        "demand_model.json",
		ProductMap:   "product_map.json",
		SalesHistory: "sales_history.csv",
	}
}

// Bundle is everything both engines read. It is never mutated after Load.
type Bundle struct {
	Model    *model.Model
	Products *model.ProductMap
	History  *history.Store

	// ModelVersion is the sha1 of the model file.
	ModelVersion string

	// Version fingerprints everything the engines read: model, product map and history.
	// Cached tool results are keyed on it.
	Version  string
	LoadedAt time.Time
}

// Fingerprint combines the model and product map checksums with the history digest.
func Fingerprint(modelSum, productMapSum string, h *history.Store) string {
	sum := sha1.Sum([]byte(modelSum + "|" + productMapSum + "|" + h.Digest()))
	return hex.EncodeToString(sum[:])
}

// ProductList returns the mapped products in code order, named from the history.
func (b *Bundle) ProductList() []domain.Product {
	ids := b.Products.IDs()
	out := make([]domain.Product, len(ids))
	for code, id := range ids {
		name, _ := b.History.ProductName(id)
		out[code] = domain.Product{ID: id, Name: name, Code: code}
	}
	return out
}
