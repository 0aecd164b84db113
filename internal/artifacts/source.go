package artifacts

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/storage"
)

// Source materialises artifact files into a local directory before they are parsed.
type Source interface {
	Fetch(ctx context.Context, dir string, names []string) error
}

// LocalSource reads artifacts that are already on disk.
type LocalSource struct{}

func (LocalSource) Fetch(context.Context, string, []string) error { return nil }

// ObjectSource downloads artifacts from S3-compatible storage under Prefix.
type ObjectSource struct {
	Storage storage.ObjectStorage
	Prefix  string
}

func (s ObjectSource) Fetch(ctx context.Context, dir string, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			key := ObjectKey(s.Prefix, name)
			if err := s.Storage.DownloadObject(ctx, key, filepath.Join(dir, name)); err != nil {
				return fmt.Errorf("fetch %s: %w", key, err)
			}
			log.Info().Str("key", key).Msg("artifacts: downloaded")
			return nil
		})
	}
	return g.Wait()
}

// ObjectKey joins prefix and name with a single slash.
func ObjectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
