package training

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/features"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/history"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/model"
)

type productJob struct {
	index     int
	productID string
	code      int
}

// buildRows derives training rows for every product using a worker pool. Rows come
// back grouped by product in product map order, each group sorted by date.
func buildRows(ctx context.Context, store *history.Store, pm *model.ProductMap, workerCount int) ([]row, error) {
	if workerCount < 1 {
		workerCount = 1
	}

	ids := pm.IDs()
	results := make([][]row, len(ids))

	jobChan := make(chan productJob, len(ids))
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				results[job.index] = productRows(store, job.productID, job.code)
				log.Debug().
					Int("worker", workerID).
					Str("product_id", job.productID).
					Int("rows", len(results[job.index])).
					Msg("training: built feature rows")
			}
		}(i)
	}

	var enqueueErr error
	for i, id := range ids {
		select {
		case <-ctx.Done():
			enqueueErr = ctx.Err()
		case jobChan <- productJob{index: i, productID: id, code: i}:
		}
		if enqueueErr != nil {
			break
		}
	}
	close(jobChan)
	wg.Wait()

	if enqueueErr != nil {
		return nil, enqueueErr
	}

	var out []row
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}

// productRows builds one row per recorded day from the days before it.
func productRows(store *history.Store, productID string, code int) []row {
	records := store.Records(productID)
	units := make([]float64, len(records))
	for i, r := range records {
		units[i] = float64(r.UnitsSold)
	}

	out := make([]row, len(records))
	for i, r := range records {
		out[i] = row{
			date:   r.Date,
			x:      features.Build(code, r.Date, units[:i], r.Promotion),
			target: units[i],
		}
	}
	return out
}
