package dto

// UploadCSVRequest carries an inline price-list CSV to validate and store.
type UploadCSVRequest struct {
	FileName string `json:"file_name" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// UploadCSVResponse reports the stored file and its data row count.
type UploadCSVResponse struct {
	FileName  string `json:"file_name"`
	Container string `json:"container"`
	Rows      int    `json:"rows"`
}

// ReprocessRequest asks the pipeline to (re)ingest an object already in
// storage. Files previously marked succeeded are skipped by the tracker.
type ReprocessRequest struct {
	Container string `json:"container" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
}
