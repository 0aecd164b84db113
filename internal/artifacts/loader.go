package artifacts

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/model"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/repository"
)

// Loader builds a Bundle from a Source. When Sales is set the history is read from
// the repository instead of the CSV file.
type Loader struct {
	Source Source
	Dir    string
	Files  Files
	Sales  repository.SalesRepository
}

// Load fetches and parses all artifacts. Every failure wraps domain.ErrArtifactLoad.
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	started := time.Now()
	files := l.Files
	if files == (Files{}) {
		files = DefaultFiles()
	}
	source := l.Source
	if source == nil {
		source = LocalSource{}
	}

	names := []string{files.Model, files.ProductMap}
	if l.Sales == nil {
		names = append(names, files.SalesHistory)
	}
	if err := source.Fetch(ctx, l.Dir, names); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArtifactLoad, err)
	}

	bundle := &Bundle{}
	var productMapSum string
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := os.ReadFile(filepath.Join(l.Dir, files.Model))
		if err != nil {
			return err
		}
		m, err := model.Read(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%s: %w", files.Model, err)
		}
		bundle.Model = m
		bundle.ModelVersion = checksum(data)
		return nil
	})

	g.Go(func() error {
		data, err := os.ReadFile(filepath.Join(l.Dir, files.ProductMap))
		if err != nil {
			return err
		}

		pm, err := model.ReadProductMap(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("%s: %w", files.ProductMap, err)
		}
		bundle.Products = pm
		productMapSum = checksum(data)
		return nil
	})

	g.Go(func() error {
		if l.Sales != nil {
			records, err := l.Sales.ListSales(gctx, repository.SalesFilter{})
			if err != nil {
				return err
			}
			store, err := history.NewStore(records)
			if err != nil {
				return fmt.Errorf("sales history: %w", err)
			}
			bundle.History = store
			return nil
		}

		store, err := history.LoadCSV(filepath.Join(l.Dir, files.SalesHistory))
		if err != nil {
			return err
		}
		bundle.History = store
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArtifactLoad, err)
	}

	if bundle.Model.Products != bundle.Products.Len() {
		return nil, fmt.Errorf("%w: model was trained on %d products but the product map has %d",
			domain.ErrArtifactLoad, bundle.Model.Products, bundle.Products.Len())
	}
	for _, id := range bundle.History.ProductIDs() {
		if _, err := bundle.Products.Code(id); err != nil {
			log.Warn().Str("product_id", id).Msg("artifacts: history contains a product the model was not trained on")
		}
	}

	bundle.Version = Fingerprint(bundle.ModelVersion, productMapSum, bundle.History)
	bundle.LoadedAt = time.Now().UTC()
	log.Info().
		Str("version", bundle.Version).
		Str("model_version", bundle.ModelVersion).
		Int("products", bundle.Products.Len()).
		Int("history_rows", bundle.History.Len()).
		Dur("took", time.Since(started)).
		Msg("artifacts: loaded")

	return bundle, nil
}

func checksum(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}
