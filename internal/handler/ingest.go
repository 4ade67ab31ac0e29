package handler

import (
	"io"
	"net/http"

	"pricefeed/internal/apierror"
	"pricefeed/internal/dto"
	"pricefeed/internal/service"
	"pricefeed/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// IngestHandler exposes the pipeline over HTTP. CSV uploads and reprocess
// requests are validated, stored, and queued; invoice images run synchronously
// so the caller gets the extraction result back.
type IngestHandler struct {
	svc        service.IngestService
	dispatcher *worker.Dispatcher
}

func NewIngestHandler(svc service.IngestService, dispatcher *worker.Dispatcher) *IngestHandler {
	return &IngestHandler{svc: svc, dispatcher: dispatcher}
}

// UploadCSV validates an inline price list, stores it, and queues it for
// ingestion.
// POST /v1/csv
func (h *IngestHandler) UploadCSV(c *gin.Context) {
	var req dto.UploadCSVRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.ValidateAndStoreCSV(c.Request.Context(), req.FileName, []byte(req.Content))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		return
	}

	job := worker.IngestJob{Kind: worker.KindCSV, Container: resp.Container, FileName: resp.FileName}
	if err := h.dispatcher.EnqueueIngest(c.Request.Context(), job); err != nil {
		log.Error().Err(err).Str("file", resp.FileName).Msg("failed to enqueue csv ingestion")
		c.JSON(http.StatusInternalServerError, apierror.New("failed to queue ingestion"))
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// UploadInvoice accepts a multipart invoice image and runs extraction and
// ingestion synchronously.
// POST /v1/invoices
func (h *IngestHandler) UploadInvoice(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("multipart field 'file' is required"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("cannot read uploaded file"))
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("cannot read uploaded file"))
		return
	}

	result := h.svc.ProcessInvoice(c.Request.Context(), "invoices", fileHeader.Filename, image)
	status := http.StatusOK
	if !result.Succeeded {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

// Reprocess queues an object already in storage for (re)ingestion. Files
// previously marked succeeded are skipped by the tracker.
// POST /v1/ingest
func (h *IngestHandler) Reprocess(c *gin.Context) {
	var req dto.ReprocessRequest
	if !bindAndValidate(c, &req) {
		return
	}

	job := worker.IngestJob{Kind: worker.KindCSV, Container: req.Container, FileName: req.FileName}
	if err := h.dispatcher.EnqueueIngest(c.Request.Context(), job); err != nil {
		log.Error().Err(err).Str("file", req.FileName).Msg("failed to enqueue reprocess")
		c.JSON(http.StatusInternalServerError, apierror.New("failed to queue ingestion"))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"queued": true, "container": req.Container, "file_name": req.FileName})
}
