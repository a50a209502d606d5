package types

// BulkOperationKind names a bulk operation applied to a selection.
type BulkOperationKind string

const (
	BulkDelete BulkOperationKind = "delete"
	BulkTag    BulkOperationKind = "tag"
	BulkMove   BulkOperationKind = "move"
	BulkExport BulkOperationKind = "export"
)

// ExportFormat is a client-side serialization format.
type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"
	FormatCSV      ExportFormat = "csv"
	FormatMarkdown ExportFormat = "markdown"
)

// Ext returns the file extension for the format ("md" for markdown, the
// format name otherwise).
func (f ExportFormat) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ContentType returns the MIME type used when saving a download.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}

// BulkRequest describes one user-confirmed bulk operation. Exactly the
// fields for the requested kind are consulted; the rest are ignored.
type BulkRequest struct {
	Kind      BulkOperationKind
	TargetIDs []string

	// Tag: raw comma-separated input as typed by the user.
	TagInput string

	// Move: destination collection id.
	CollectionID string

	// Export.
	Formats         []ExportFormat
	IncludeMetadata bool
}

// Download is a client-side file produced by an export.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BulkResult is the aggregate outcome of a bulk operation, reported once
// after every per-id call has resolved.
type BulkResult struct {
	Kind      BulkOperationKind
	Succeeded []string
	// Failed maps each failing id to a reason. Successes are never rolled
	// back on partial failure.
	Failed map[string]string
	// Downloads is populated for export operations only.
	Downloads []Download
	// Notification is the summary message surfaced to the user.
	Notification string
}

// Ok reports whether every target succeeded.
func (r *BulkResult) Ok() bool { return len(r.Failed) == 0 }
