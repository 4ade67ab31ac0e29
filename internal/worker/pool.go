package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueIngest = "jobs:ingest"

// Job kinds delivered on the ingest queue.
const (
	KindCSV     = "csv"
	KindInvoice = "invoice"
)

// IngestJob asks a worker to run the pipeline for one stored object.
// Delivery is at-least-once: duplicate or concurrent deliveries are tolerated
// by the file tracker and the natural-key merge, not by the queue.
type IngestJob struct {
	Kind      string `json:"kind"` // csv | invoice
	Container string `json:"container"`
	FileName  string `json:"file_name"`
}

// Dispatcher enqueues ingest jobs into a Redis list.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueIngest pushes one job to the ingest queue.
func (d *Dispatcher) EnqueueIngest(ctx context.Context, job IngestJob) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueIngest, encoded).Err()
}

// StartPool launches numWorkers goroutines consuming the ingest queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartPool(ctx context.Context, rdb *redis.Client, w *IngestWorker, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, w, i)
	}
	log.Info().Msgf("ingest worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, w *IngestWorker, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueIngest).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}

			var job IngestJob
			if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal ingest job")
				continue
			}
			w.Process(ctx, job)
		}
	}
}
