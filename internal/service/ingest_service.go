package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"pricefeed/internal/dto"
	"pricefeed/internal/etl"
	"pricefeed/internal/model"
	"pricefeed/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StoreProber wakes the backing store before any staging or merge work. A
// serverless store may be suspended; Ensure retries a trivial probe with
// bounded exponential backoff and fails fatally once attempts are exhausted.
type StoreProber interface {
	Ensure(ctx context.Context) error
}

// ObjectStore is the boundary to blob storage.
type ObjectStore interface {
	Read(ctx context.Context, bucket, name string) ([]byte, error)
	Write(ctx context.Context, bucket, name string, data []byte, contentType string) error
}

// InvoiceExtractor turns an invoice image into tabular rows with the same
// column shape as a native CSV upload. An empty or malformed response is a
// fatal extraction error, never a silent zero-row success.
type InvoiceExtractor interface {
	Extract(ctx context.Context, image []byte, imageName string) (*etl.RecordSet, error)
}

// IngestService orchestrates one pipeline invocation: wake store → tracker
// gate → normalize → stage → merge → tracker finalize. No error escapes
// uncaught; every outcome is a ProcessingResult.
type IngestService interface {
	ProcessCSV(ctx context.Context, container, fileName string, data []byte) dto.ProcessingResult
	ProcessInvoice(ctx context.Context, container, imageName string, image []byte) dto.InvoiceProcessingResult
	ValidateAndStoreCSV(ctx context.Context, fileName string, content []byte) (*dto.UploadCSVResponse, error)
}

// IngestConfig names the buckets the service reads from and writes to.
type IngestConfig struct {
	CSVBucket     string // inbound price lists
	InvoiceBucket string // extracted-invoice CSV artifacts
}

type ingestService struct {
	prober  StoreProber
	files   repository.ProcessFileRepository
	refs    repository.ReferenceRepository
	staging repository.StagingRepository
	merger  repository.MergeRepository
	store   ObjectStore
	vision  InvoiceExtractor
	cfg     IngestConfig
	now     func() time.Time
}

func NewIngestService(
	prober StoreProber,
	files repository.ProcessFileRepository,
	refs repository.ReferenceRepository,
	staging repository.StagingRepository,
	merger repository.MergeRepository,
	store ObjectStore,
	vision InvoiceExtractor,
	cfg IngestConfig,
) IngestService {
	return &ingestService{
		prober:  prober,
		files:   files,
		refs:    refs,
		staging: staging,
		merger:  merger,
		store:   store,
		vision:  vision,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ── ProcessCSV ───────────────────────────────────────────────────────────────

func (s *ingestService) ProcessCSV(ctx context.Context, container, fileName string, data []byte) dto.ProcessingResult {
	log.Info().Str("container", container).Str("file", fileName).Int("bytes", len(data)).
		Msg("starting price list ingestion")

	if err := s.prober.Ensure(ctx); err != nil {
		return s.fail(ctx, container, fileName, nil, fmt.Errorf("store unreachable: %w", err))
	}

	pf, skip, err := s.beginTracking(ctx, container, fileName, int64(len(data)), "text/csv")
	if err != nil {
		return s.fail(ctx, container, fileName, nil, err)
	}
	if skip {
		msg := fmt.Sprintf("file %s already processed successfully, skipped", fileName)
		log.Info().Str("container", container).Str("file", fileName).Msg("file already succeeded, skipping")
		return dto.ProcessingResult{Succeeded: true, Message: msg}
	}

	rs, err := etl.ParseCSV(data)
	if err != nil {
		return s.fail(ctx, container, fileName, pf, err)
	}

	if err := s.run(ctx, rs, uuid.New()); err != nil {
		return s.fail(ctx, container, fileName, pf, err)
	}

	s.succeed(ctx, pf)
	return dto.ProcessingResult{
		Succeeded: true,
		Message:   fmt.Sprintf("ingestion completed for %s/%s", container, fileName),
	}
}

// ── ProcessInvoice ───────────────────────────────────────────────────────────

func (s *ingestService) ProcessInvoice(ctx context.Context, container, imageName string, image []byte) dto.InvoiceProcessingResult {
	log.Info().Str("container", container).Str("image", imageName).Msg("starting invoice ingestion")

	failure := func(err error) dto.InvoiceProcessingResult {
		return dto.InvoiceProcessingResult{ProcessingResult: s.fail(ctx, container, imageName, nil, err)}
	}

	if err := s.prober.Ensure(ctx); err != nil {
		return failure(fmt.Errorf("store unreachable: %w", err))
	}

	pf, skip, err := s.beginTracking(ctx, container, imageName, int64(len(image)), "image/jpeg")
	if err != nil {
		return failure(err)
	}
	if skip {
		return dto.InvoiceProcessingResult{ProcessingResult: dto.ProcessingResult{
			Succeeded: true,
			Message:   fmt.Sprintf("invoice %s already processed successfully, skipped", imageName),
		}}
	}

	rs, err := s.vision.Extract(ctx, image, imageName)
	if err != nil {
		return dto.InvoiceProcessingResult{ProcessingResult: s.fail(ctx, container, imageName, pf, fmt.Errorf("invoice extraction: %w", err))}
	}

	batch := uuid.New()

	// Persist the extracted rows as a CSV artifact before merging, so a
	// failed merge still leaves an auditable extraction result.
	csvName := fmt.Sprintf("%s_%s.csv",
		strings.TrimSuffix(imageName, filepath.Ext(imageName)), batch.String()[:8])
	artifact, err := rs.WriteCSV()
	if err == nil {
		err = s.store.Write(ctx, s.cfg.InvoiceBucket, csvName, artifact, "text/csv")
	}
	if err != nil {
		return dto.InvoiceProcessingResult{ProcessingResult: s.fail(ctx, container, imageName, pf, fmt.Errorf("write csv artifact: %w", err))}
	}

	if err := s.run(ctx, rs, batch); err != nil {
		return dto.InvoiceProcessingResult{ProcessingResult: s.fail(ctx, container, imageName, pf, err)}
	}

	s.succeed(ctx, pf)
	return dto.InvoiceProcessingResult{
		ProcessingResult: dto.ProcessingResult{
			Succeeded: true,
			Message:   fmt.Sprintf("invoice ingestion completed for %s", imageName),
		},
		ProductsExtracted: len(rs.Rows),
		CSVFileName:       &csvName,
		OutputContainer:   &s.cfg.InvoiceBucket,
	}
}

// ── ValidateAndStoreCSV ──────────────────────────────────────────────────────

// requiredHeaders must all be present in an uploaded price list. The IVA and
// date columns may appear under either accepted spelling. Files arriving
// through other triggers are not held to this contract: the normalizer
// synthesizes a date when the column is absent.
var requiredHeaders = []string{"Producto", "Provedor", "Precio"}

func (s *ingestService) ValidateAndStoreCSV(ctx context.Context, fileName string, content []byte) (*dto.UploadCSVResponse, error) {
	rs, err := etl.ParseCSV(content)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, h := range requiredHeaders {
		if !rs.HasColumn(h) {
			missing = append(missing, h)
		}
	}
	if !rs.HasColumn("Fecha 1") && !rs.HasColumn("Fecha") {
		missing = append(missing, "Fecha 1")
	}
	if !rs.HasColumn("IVA") && !rs.HasColumn("Porcentaje de IVA") {
		missing = append(missing, "IVA")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required headers: %s", strings.Join(missing, ", "))
	}

	if err := s.store.Write(ctx, s.cfg.CSVBucket, fileName, content, "text/csv"); err != nil {
		return nil, fmt.Errorf("store csv: %w", err)
	}

	log.Info().Str("file", fileName).Str("bucket", s.cfg.CSVBucket).Int("rows", len(rs.Rows)).
		Msg("validated and stored price list")

	return &dto.UploadCSVResponse{
		FileName:  fileName,
		Container: s.cfg.CSVBucket,
		Rows:      len(rs.Rows),
	}, nil
}

// ── Pipeline core ────────────────────────────────────────────────────────────

// run normalizes the record set and pushes it through staging and merge under
// one batch id.
func (s *ingestService) run(ctx context.Context, rs *etl.RecordSet, batch uuid.UUID) error {
	synonyms, err := s.refs.ProviderSynonyms(ctx)
	if err != nil {
		return fmt.Errorf("load provider synonyms: %w", err)
	}

	records := etl.Normalize(rs, s.now(), synonyms)
	if len(records) == 0 {
		return etl.ErrEmptyInput
	}

	providers := etl.StageProviders(records, batch)
	products := etl.StageProducts(records, batch)
	providerProducts := etl.StageProviderProducts(records, batch)

	if err := s.staging.InsertProviders(ctx, providers); err != nil {
		return fmt.Errorf("stage providers: %w", err)
	}
	if err := s.staging.InsertProducts(ctx, products); err != nil {
		return fmt.Errorf("stage products: %w", err)
	}
	if err := s.staging.InsertProviderProducts(ctx, providerProducts); err != nil {
		return fmt.Errorf("stage provider products: %w", err)
	}

	log.Info().
		Str("batch", batch.String()).
		Int("providers", len(providers)).
		Int("products", len(products)).
		Int("provider_products", len(providerProducts)).
		Msg("staged batch")

	return s.merger.MergeBatch(ctx, batch)
}

// ── Tracker transitions ──────────────────────────────────────────────────────

// beginTracking applies the per-file state machine at the start of a run:
// unseen files get an InProgress row, files already Succeeded are skipped,
// and InProgress/Failed files are (re)marked InProgress for reprocessing.
func (s *ingestService) beginTracking(ctx context.Context, container, fileName string, size int64, contentType string) (pf *model.ProcessFile, skip bool, err error) {
	existing, err := s.files.FindByKey(ctx, container, fileName)
	switch {
	case err == nil:
		if existing.StatusID == model.StatusSucceeded {
			return existing, true, nil
		}
		if err := s.files.SetStatus(ctx, existing.ID, model.StatusInProgress); err != nil {
			return nil, false, fmt.Errorf("mark in progress: %w", err)
		}
		return existing, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		now := s.now()
		pf = &model.ProcessFile{
			Container:      container,
			FileName:       fileName,
			StatusID:       model.StatusInProgress,
			ProcessDt:      now,
			BlobSize:       size,
			ContentType:    contentType,
			CreatedDt:      now,
			LastModifiedDt: now,
			Metadata:       "{}",
		}
		if err := s.files.Create(ctx, pf); err != nil {
			return nil, false, fmt.Errorf("create tracker row: %w", err)
		}
		return pf, false, nil

	default:
		return nil, false, fmt.Errorf("check tracker status: %w", err)
	}
}

func (s *ingestService) succeed(ctx context.Context, pf *model.ProcessFile) {
	if err := s.files.SetStatus(ctx, pf.ID, model.StatusSucceeded); err != nil {
		log.Error().Err(err).Str("file", pf.FileName).Msg("failed to mark file succeeded")
	}
}

// fail marks the file Failed (best effort — the store itself may be the thing
// that is down) and converts the error into a ProcessingResult.
func (s *ingestService) fail(ctx context.Context, container, fileName string, pf *model.ProcessFile, cause error) dto.ProcessingResult {
	log.Error().Err(cause).Str("container", container).Str("file", fileName).Msg("ingestion failed")

	if pf == nil {
		if existing, err := s.files.FindByKey(ctx, container, fileName); err == nil {
			pf = existing
		}
	}
	if pf != nil {
		if err := s.files.SetStatus(ctx, pf.ID, model.StatusFailed); err != nil {
			log.Error().Err(err).Str("file", fileName).Msg("failed to mark file failed")
		}
	}

	return dto.ProcessingResult{
		Succeeded: false,
		Message:   fmt.Sprintf("ingestion failed for %s/%s: %v", container, fileName, cause),
	}
}
