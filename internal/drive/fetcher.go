package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// FileSource is the subset of Service the Fetcher needs.
type FileSource interface {
	ListFiles(ctx context.Context, folderID string) ([]File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// Fetcher copies named artifact files out of a single Drive folder.
type Fetcher struct {
	files    FileSource
	folderID string
}

func NewFetcher(files FileSource, folderID string) *Fetcher {
	return &Fetcher{files: files, folderID: folderID}
}

// Fetch downloads every name in names into dir. A wanted .csv may be satisfied by an
// .xlsx with the same stem; its first sheet is converted to CSV.
func (f *Fetcher) Fetch(ctx context.Context, dir string, names []string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}

	listing, err := f.files.ListFiles(ctx, f.folderID)
	if err != nil {
		return err
	}
	byName := make(map[string]File, len(listing))
	for _, file := range listing {
		byName[file.Name] = file
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := filepath.Join(dir, name)
		if file, ok := byName[name]; ok {
			if err := f.download(ctx, file, target); err != nil {
				return err
			}
			log.Info().Str("file", name).Str("drive_id", file.ID).Msg("drive: fetched artifact")
			continue
		}

		if strings.EqualFold(filepath.Ext(name), ".csv") {
			xlsxName := strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
			if file, ok := byName[xlsxName]; ok {
				tmp := filepath.Join(dir, xlsxName)
				if err := f.download(ctx, file, tmp); err != nil {
					return err
				}
				if err := ConvertXLSXToCSV(tmp, target); err != nil {
					return fmt.Errorf("failed to convert %s to csv: %w", xlsxName, err)
				}
				_ = os.Remove(tmp)
				log.Info().Str("file", name).Str("drive_id", file.ID).Msg("drive: fetched and converted xlsx artifact")
				continue
			}
		}

		return fmt.Errorf("drive folder %s has no file named %s", f.folderID, name)
	}

	return nil
}

func (f *Fetcher) download(ctx context.Context, file File, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", dest, err)
	}
	defer out.Close()

	if err := f.files.DownloadFile(ctx, file.ID, out); err != nil {
		return fmt.Errorf("failed to download %s: %w", file.Name, err)
	}
	return out.Close()
}
