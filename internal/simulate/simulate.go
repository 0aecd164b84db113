// Package simulate generates synthetic daily sales with monthly seasonality, a yearly
// trend, occasional promotions and gaussian noise.
package simulate

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
)

const (
	baseDemand       = 20
	baseJitter       = 5
	trendPerYear     = 0.01
	promoProbability = 0.02
	promoMultiplier  = 1.6
	noiseSigma       = 3.0
)

// Run simulates every product over the catalog's date range. The output is
// deterministic for a given catalog.
func Run(c Catalog) ([]domain.SalesRecord, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	start, _ := time.Parse(domain.DateLayout, c.Start)
	end, _ := time.Parse(domain.DateLayout, c.End)

	src := rand.NewPCG(c.Seed, c.Seed)
	rng := rand.New(src)
	promo := distuv.Bernoulli{P: promoProbability, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: noiseSigma, Src: src}

	days := int(end.Sub(start).Hours()/24) + 1
	records := make([]domain.SalesRecord, 0, days*len(c.Products))

	for _, p := range c.Products {
		base := float64(baseDemand + rng.IntN(2*baseJitter+1) - baseJitter)

		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			season := p.Seasonality[d.Month()-1]
			trend := 1 + trendPerYear*float64(d.Year()-start.Year())

			multiplier := 1.0
			if promo.Rand() == 1 {
				multiplier = promoMultiplier
			}

			units := math.Max(0, math.RoundToEven(base*(1+season)*trend*multiplier+noise.Rand()))

			records = append(records, domain.SalesRecord{
				Date:        d,
				ProductID:   p.ID,
				ProductName: p.Name,
				UnitsSold:   int(units),
				Promotion:   multiplier,
			})
		}
	}

	return records, nil
}
