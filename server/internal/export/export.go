// Package export renders memories into downloadable formats for the
// /api/export/memories endpoint.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/knowledge-rag/knowledge-rag-go/server/internal/model"
)

// Options mirror the export request flags.
type Options struct {
	IncludeMetadata bool
	IncludeTags     bool
}

// Render serializes items in the requested format and returns the bytes and
// content type. Supported formats: json, csv, markdown.
func Render(items []model.Memory, format string, opts Options) ([]byte, string, error) {
	switch format {
	case "json":
		data, err := renderJSON(items, opts)
		return data, "application/json", err
	case "csv":
		data, err := renderCSV(items, opts)
		return data, "text/csv", err
	case "markdown":
		return renderMarkdown(items, opts), "text/markdown", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func renderJSON(items []model.Memory, opts Options) ([]byte, error) {
	out := make([]model.Memory, len(items))
	for i, m := range items {
		out[i] = m
		if !opts.IncludeMetadata {
			out[i].Metadata = nil
		}
		if !opts.IncludeTags {
			out[i].Tags = nil
		}
	}
	return json.MarshalIndent(struct {
		Memories []model.Memory `json:"memories"`
	}{Memories: out}, "", "  ")
}

func renderCSV(items []model.Memory, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "title", "content", "collectionId", "createdAt", "updatedAt"}
	if opts.IncludeTags {
		header = append(header, "tags")
	}
	if opts.IncludeMetadata {
		header = append(header, "metadata")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, m := range items {
		row := []string{
			m.ID, m.Title, m.Content, m.CollectionID,
			m.CreatedAt.UTC().Format(time.RFC3339),
			m.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if opts.IncludeTags {
			row = append(row, strings.Join(m.Tags, ";"))
		}
		if opts.IncludeMetadata {
			meta, err := json.Marshal(m.Metadata)
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
	return buf.Bytes(), w.Error()
}

func renderMarkdown(items []model.Memory, opts Options) []byte {
	var b strings.Builder
	b.WriteString("# Memories Export\n")
	for _, m := range items {
		b.WriteString("\n## ")
		b.WriteString(m.Title)
		b.WriteString("\n\n")
		if opts.IncludeTags && len(m.Tags) > 0 {
			b.WriteString("Tags: ")
			b.WriteString(strings.Join(m.Tags, ", "))
			b.WriteString("\n\n")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return []byte(b.String())
}
