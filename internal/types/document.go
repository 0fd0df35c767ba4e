package types

// DocumentStatus describes the outcome of the optional formatting stage.
type DocumentStatus string

const (
	// DocumentSuccess means a document was rendered and written.
	DocumentSuccess DocumentStatus = "success"
	// DocumentSkipped means no rendering backend is installed. This is not
	// an error.
	DocumentSkipped DocumentStatus = "skipped"
	// DocumentError means a backend was available but conversion failed.
	DocumentError DocumentStatus = "error"
)

// DocumentOutput is the output of the document formatting stage.
type DocumentOutput struct {
	ID          string         `json:"id"`
	Status      DocumentStatus `json:"status"`
	Backend     string         `json:"backend,omitempty"`
	Path        string         `json:"path,omitempty"`
	PageCount   int            `json:"page_count,omitempty"`
	SizeBytes   int64          `json:"size_bytes,omitempty"`
	ErrorDetail string         `json:"error_detail,omitempty"`
}
