package dto

// ProcessingResult is what triggers consume from the pipeline core. A failed
// invocation never surfaces as an error: it surfaces as Succeeded=false with
// a message describing the specific failure.
type ProcessingResult struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
}

// InvoiceProcessingResult extends ProcessingResult for the invoice flow with
// the extraction count and the CSV artifact written back to object storage.
type InvoiceProcessingResult struct {
	ProcessingResult
	ProductsExtracted int     `json:"products_extracted"`
	CSVFileName       *string `json:"csv_file_name"`
	OutputContainer   *string `json:"output_container"`
}
