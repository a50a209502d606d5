package bulk

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// exportFilename builds "memories-export-<ISO8601 timestamp>.<ext>". Colons
// are not filesystem-safe everywhere, so the timestamp uses dashes inside
// the time component.
func exportFilename(now time.Time, format types.ExportFormat) string {
	ts := now.UTC().Format("2006-01-02T15-04-05Z")
	return fmt.Sprintf("memories-export-%s.%s", ts, format.Ext())
}

// serialize renders items in the requested format. Serialization is pure:
// the same items in the same order always produce identical bytes, so
// exporting a selection twice is byte-stable (only filenames differ).
func serialize(items []types.MemoryItem, format types.ExportFormat, includeMetadata bool) ([]byte, error) {
	switch format {
	case types.FormatJSON:
		return serializeJSON(items, includeMetadata)
	case types.FormatCSV:
		return serializeCSV(items, includeMetadata)
	case types.FormatMarkdown:
		return serializeMarkdown(items), nil
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", types.ErrInvalidRequest, format)
	}
}

func serializeJSON(items []types.MemoryItem, includeMetadata bool) ([]byte, error) {
	if !includeMetadata {
		stripped := make([]types.MemoryItem, len(items))
		for i, item := range items {
			stripped[i] = item.Clone()
			stripped[i].Metadata = nil
		}
		items = stripped
	}
	return json.MarshalIndent(struct {
		Memories []types.MemoryItem `json:"memories"`
	}{Memories: items}, "", "  ")
}

func serializeCSV(items []types.MemoryItem, includeMetadata bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "title", "content", "tags", "collectionId", "createdAt", "updatedAt"}
	if includeMetadata {
		header = append(header, "metadata")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, item := range items {
		row := []string{
			item.ID,
			item.Title,
			item.Content,
			strings.Join(item.Tags, ";"),
			item.CollectionID,
			item.CreatedAt.UTC().Format(time.RFC3339),
			item.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if includeMetadata {
			meta, err := json.Marshal(item.Metadata)
			if err != nil {
				return nil, err
			}
			row = append(row, string(meta))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func serializeMarkdown(items []types.MemoryItem) []byte {
	var b strings.Builder
	b.WriteString("# Memories Export\n")
	for _, item := range items {
		b.WriteString("\n## ")
		b.WriteString(item.Title)
		b.WriteString("\n\n")
		if len(item.Tags) > 0 {
			b.WriteString("Tags: ")
			b.WriteString(strings.Join(item.Tags, ", "))
			b.WriteString("\n\n")
		}
		b.WriteString(item.Content)
		b.WriteString("\n")
	}
	return []byte(b.String())
}
