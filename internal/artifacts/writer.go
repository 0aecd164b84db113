package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/model"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/storage"
)

// Save writes the model and product map into dir.
func Save(dir string, files Files, m *model.Model, pm *model.ProductMap) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, files.Model), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	buf.Reset()
	if _, err := pm.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode product map: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, files.ProductMap), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write product map: %w", err)
	}

	return nil
}

// Publish uploads the artifact files found in dir to store under prefix.
func Publish(ctx context.Context, store storage.ObjectStorage, prefix, dir string, files Files) error {
	for _, name := range []string{files.Model, files.ProductMap, files.SalesHistory} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		key := ObjectKey(prefix, name)
		if err := store.UploadObject(ctx, key, data); err != nil {
			return err
		}
		log.Info().Str("key", key).Int("bytes", len(data)).Msg("artifacts: published")
	}
	return nil
}
