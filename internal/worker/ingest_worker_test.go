package worker

import (
	"context"
	"errors"
	"testing"

	"pricefeed/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIngestService struct {
	csvCalls     []string
	invoiceCalls []string
	succeed      bool
}

func (s *stubIngestService) ProcessCSV(_ context.Context, container, fileName string, _ []byte) dto.ProcessingResult {
	s.csvCalls = append(s.csvCalls, container+"/"+fileName)
	return dto.ProcessingResult{Succeeded: s.succeed, Message: "done"}
}

func (s *stubIngestService) ProcessInvoice(_ context.Context, container, imageName string, _ []byte) dto.InvoiceProcessingResult {
	s.invoiceCalls = append(s.invoiceCalls, container+"/"+imageName)
	return dto.InvoiceProcessingResult{ProcessingResult: dto.ProcessingResult{Succeeded: s.succeed}}
}

func (s *stubIngestService) ValidateAndStoreCSV(context.Context, string, []byte) (*dto.UploadCSVResponse, error) {
	return nil, nil
}

type stubObjectStore struct {
	data []byte
	err  error
}

func (s *stubObjectStore) Read(context.Context, string, string) ([]byte, error) {
	return s.data, s.err
}

func (s *stubObjectStore) Write(context.Context, string, string, []byte, string) error {
	return nil
}

func TestIngestWorkerDispatchesByKind(t *testing.T) {
	svc := &stubIngestService{succeed: true}
	w := NewIngestWorker(svc, &stubObjectStore{data: []byte("Producto,Precio\n")}, nil, "")

	w.Process(context.Background(), IngestJob{Kind: KindCSV, Container: "pricelists", FileName: "lista.csv"})
	w.Process(context.Background(), IngestJob{Kind: KindInvoice, Container: "invoices", FileName: "factura.jpg"})

	require.Equal(t, []string{"pricelists/lista.csv"}, svc.csvCalls)
	require.Equal(t, []string{"invoices/factura.jpg"}, svc.invoiceCalls)
}

func TestIngestWorkerSkipsPipelineOnReadError(t *testing.T) {
	svc := &stubIngestService{succeed: true}
	w := NewIngestWorker(svc, &stubObjectStore{err: errors.New("no such object")}, nil, "")

	w.Process(context.Background(), IngestJob{Kind: KindCSV, Container: "pricelists", FileName: "lista.csv"})

	assert.Empty(t, svc.csvCalls)
	assert.Empty(t, svc.invoiceCalls)
}

func TestIngestWorkerToleratesFailureWithoutMailer(t *testing.T) {
	svc := &stubIngestService{succeed: false}
	w := NewIngestWorker(svc, &stubObjectStore{data: []byte("x")}, nil, "")

	// Must not panic when alerts are unconfigured.
	w.Process(context.Background(), IngestJob{Kind: KindCSV, Container: "pricelists", FileName: "lista.csv"})
	require.Len(t, svc.csvCalls, 1)
}
