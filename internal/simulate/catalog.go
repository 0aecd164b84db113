package simulate

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

// Product is one simulated product. Seasonality holds a demand uplift per calendar
// month, January first.
type Product struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Seasonality []float64 `yaml:"seasonality"`
}

// Catalog drives a simulation run.
type Catalog struct {
	Start    string    `yaml:"start"`
	End      string    `yaml:"end"`
	Seed     uint64    `yaml:"seed"`
	Products []Product `yaml:"products"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Start: "2021-01-01",
		End:   "2024-12-31",
		Seed:  42,
		Products: []Product{
			{ID: "P1", Name: "T-Shirt", Seasonality: []float64{0, 0, 0, 0, 0.2, 0.6, 0.9, 0.8, 0.3, 0, 0, 0}},
			{ID: "P2", Name: "Jacket", Seasonality: []float64{0.8, 0.9, 0.7, 0.4, 0.1, 0, 0, 0, 0, 0.3, 0.7, 0.9}},
			{ID: "P3", Name: "Umbrella", Seasonality: []float64{0.4, 0.6, 0.6, 0.6, 0.5, 0.3, 0.2, 0.3, 0.6, 0.7, 0.6, 0.5}},
		},
	}
}

// LoadCatalog reads a YAML catalog. Fields left out of the file keep their defaults.
func LoadCatalog(path string) (Catalog, error) {
	cat := DefaultCatalog()

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var file Catalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if file.Start != "" {
		cat.Start = file.Start
	}
	if file.End != "" {
		cat.End = file.End
	}
	if file.Seed != 0 {
		cat.Seed = file.Seed
	}
	if len(file.Products) > 0 {
		cat.Products = file.Products
	}

	return cat, cat.Validate()
}

// Validate checks dates, product ids and seasonality profiles.
func (c Catalog) Validate() error {
	start, err := time.Parse(domain.DateLayout, c.Start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := time.Parse(domain.DateLayout, c.End)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("end %s is before start %s", c.End, c.Start)
	}
	if len(c.Products) == 0 {
		return fmt.Errorf("catalog has no products")
	}

	seen := make(map[string]bool, len(c.Products))
	for _, p := range c.Products {
		if p.ID == "" {
			return fmt.Errorf("product %q has no id", p.Name)
		}
		if seen[p.ID] {
			return fmt.Errorf("product %s listed twice", p.ID)
		}
		seen[p.ID] = true
		if len(p.Seasonality) != 12 {
			return fmt.Errorf("product %s: seasonality needs 12 monthly values, got %d", p.ID, len(p.Seasonality))
		}
	}
	return nil
}
