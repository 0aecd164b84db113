package model

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

// ProductMap is the dense code <-> product id encoding fixed at training time.
type ProductMap struct {
	ids   []string
	codes map[string]int
}

// NewProductMap assigns codes 0..n-1 to the distinct ids in sorted order.
func NewProductMap(ids []string) *ProductMap {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Strings(unique)

	return newProductMap(unique)
}

func newProductMap(ids []string) *ProductMap {
	pm := &ProductMap{ids: ids, codes: make(map[string]int, len(ids))}
	for code, id := range ids {
		pm.codes[id] = code
	}
	return pm
}

// Code resolves a product id. Unknown ids return domain.ErrUnknownProduct.
func (pm *ProductMap) Code(productID string) (int, error) {
	code, ok := pm.codes[productID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, productID)
	}
	return code, nil
}

// ID returns the product id for code.
func (pm *ProductMap) ID(code int) (string, bool) {
	if code < 0 || code >= len(pm.ids) {
		return "", false
	}
	return pm.ids[code], true
}

func (pm *ProductMap) Len() int { return len(pm.ids) }

// IDs returns the product ids ordered by code.
func (pm *ProductMap) IDs() []string {
	out := make([]string, len(pm.ids))
	copy(out, pm.ids)
	return out
}

// MarshalJSON writes {"0":"P1","1":"P2",...}.
func (pm *ProductMap) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(pm.ids))
	for code, id := range pm.ids {
		m[strconv.Itoa(code)] = id
	}
	return json.Marshal(m)
}

func (pm *ProductMap) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ids := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for key, id := range raw {
		code, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("product map: code %q is not an integer", key)
		}
		if code < 0 || code >= len(raw) {
			return fmt.Errorf("product map: code %d out of range [0,%d)", code, len(raw))
		}
		if id == "" {
			return fmt.Errorf("product map: empty product id for code %d", code)
		}
		if ids[code] != "" {
			return fmt.Errorf("product map: code %d listed twice", code)
		}
		if seen[id] {
			return fmt.Errorf("product map: product %s mapped twice", id)
		}
		seen[id] = true
		ids[code] = id
	}

	*pm = *newProductMap(ids)
	return nil
}

// ReadProductMap decodes a product map written by WriteTo.
func ReadProductMap(r io.Reader) (*ProductMap, error) {
	var pm ProductMap
	if err := json.NewDecoder(r).Decode(&pm); err != nil {
		return nil, fmt.Errorf("decode product map: %w", err)
	}
	return &pm, nil
}

func (pm *ProductMap) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(pm, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}
