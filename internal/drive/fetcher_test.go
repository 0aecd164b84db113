package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeFolder struct {
	files map[string][]byte
}

func (f *fakeFolder) ListFiles(_ context.Context, folderID string) ([]File, error) {
	var out []File
	for name, data := range f.files {
		out = append(out, File{ID: "id-" + name, Name: name, Size: int64(len(data))})
	}
	return out, nil
}

func (f *fakeFolder) DownloadFile(_ context.Context, fileID string, w io.Writer) error {
	for name, data := range f.files {
		if "id-"+name == fileID {
			_, err := w.Write(data)
			return err
		}
	}
	return fmt.Errorf("no file %s", fileID)
}

func salesWorkbook(t *testing.T) []byte {
	t.Helper()
	x := excelize.NewFile()
	defer x.Close()

	sheet := x.GetSheetName(0)
	require.NoError(t, x.SetSheetRow(sheet, "A1", &[]interface{}{"date", "product_id", "product_name", "sales", "promo"}))
	require.NoError(t, x.SetSheetRow(sheet, "A2", &[]interface{}{"2024-01-01", "P1", "T-Shirt", 12, 1.0}))
	require.NoError(t, x.SetSheetRow(sheet, "A3", &[]interface{}{"2024-01-02", "P1", "T-Shirt", 14}))

	buf, err := x.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestFetcherDownloadsNamedFiles(t *testing.T) {
	folder := &fakeFolder{files: map[string][]byte{
		"demand_model.json": []byte(`{"version":1}`),
		"product_map.json":  []byte(`{"0":"P1"}`),
		"unrelated.txt":     []byte("x"),
	}}
	dir := t.TempDir()

	err := NewFetcher(folder, "folder").Fetch(context.Background(), dir, []string{"demand_model.json", "product_map.json"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "product_map.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"0":"P1"}`, string(data))

	_, err = os.Stat(filepath.Join(dir, "unrelated.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestFetcherConvertsXLSXHistory(t *testing.T) {
	folder := &fakeFolder{files: map[string][]byte{"sales_history.xlsx": salesWorkbook(t)}}
	dir := t.TempDir()

	err := NewFetcher(folder, "folder").Fetch(context.Background(), dir, []string{"sales_history.csv"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "sales_history.csv"))
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "date,product_id,product_name,sales,promo", string(lines[0]))
	assert.Equal(t, "2024-01-02,P1,T-Shirt,14,", string(lines[2]))

	_, err = os.Stat(filepath.Join(dir, "sales_history.xlsx"))
	assert.True(t, os.IsNotExist(err))
}

func TestFetcherMissingFile(t *testing.T) {
	folder := &fakeFolder{files: map[string][]byte{}}

	err := NewFetcher(folder, "folder").Fetch(context.Background(), t.TempDir(), []string{"demand_model.json"})
	assert.ErrorContains(t, err, "demand_model.json")
}
