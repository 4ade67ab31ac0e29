package worker

import (
	"context"
	"fmt"

	"pricefeed/internal/dto"
	"pricefeed/internal/infra"
	"pricefeed/internal/service"

	"github.com/rs/zerolog/log"
)

// IngestWorker executes queued ingest jobs: fetch the object, run the
// pipeline, and alert on failure. The pipeline itself never returns an
// error — a failed invocation is a ProcessingResult with Succeeded=false.
type IngestWorker struct {
	svc     service.IngestService
	store   service.ObjectStore
	mailer  *infra.Mailer
	alertTo string
}

// NewIngestWorker wires the worker. mailer may be nil (alerts disabled).
func NewIngestWorker(svc service.IngestService, store service.ObjectStore, mailer *infra.Mailer, alertTo string) *IngestWorker {
	return &IngestWorker{svc: svc, store: store, mailer: mailer, alertTo: alertTo}
}

func (w *IngestWorker) Process(ctx context.Context, job IngestJob) {
	data, err := w.store.Read(ctx, job.Container, job.FileName)
	if err != nil {
		log.Error().Err(err).Str("container", job.Container).Str("file", job.FileName).
			Msg("ingest_worker: failed to read object")
		w.alert(job, err.Error())
		return
	}

	var result dto.ProcessingResult
	switch job.Kind {
	case KindInvoice:
		result = w.svc.ProcessInvoice(ctx, job.Container, job.FileName, data).ProcessingResult
	default:
		result = w.svc.ProcessCSV(ctx, job.Container, job.FileName, data)
	}

	if !result.Succeeded {
		log.Error().Str("file", job.FileName).Str("message", result.Message).
			Msg("ingest_worker: pipeline failed")
		w.alert(job, result.Message)
		return
	}
	log.Info().Str("file", job.FileName).Str("message", result.Message).
		Msg("ingest_worker: pipeline completed")
}

func (w *IngestWorker) alert(job IngestJob, message string) {
	if w.mailer == nil || w.alertTo == "" {
		return
	}
	subject := fmt.Sprintf("[pricefeed] ingestion failed: %s/%s", job.Container, job.FileName)
	if err := w.mailer.SendAlert(w.alertTo, subject, message); err != nil {
		log.Error().Err(err).Msg("ingest_worker: failed to send alert email")
	}
}
