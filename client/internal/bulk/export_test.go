package bulk

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

func exportItems() []types.MemoryItem {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return []types.MemoryItem{
		{
			ID:        "m1",
			Title:     "First memory",
			Content:   "alpha content",
			Tags:      []string{"work", "important"},
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
			Metadata:  map[string]any{"source": "web"},
		},
		{
			ID:           "m2",
			Title:        "Second memory",
			Content:      "beta content",
			CollectionID: "col-1",
			CreatedAt:    created,
			UpdatedAt:    created.Add(2 * time.Hour),
		},
	}
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2025, 3, 4, 10, 30, 45, 0, time.UTC)
	cases := []struct {
		format types.ExportFormat
		want   string
	}{
		{types.FormatJSON, "memories-export-2025-03-04T10-30-45Z.json"},
		{types.FormatCSV, "memories-export-2025-03-04T10-30-45Z.csv"},
		{types.FormatMarkdown, "memories-export-2025-03-04T10-30-45Z.md"},
	}
	pattern := regexp.MustCompile(`^memories-export-\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}Z\.(json|csv|md)$`)
	for _, tc := range cases {
		got := exportFilename(ts, tc.format)
		if got != tc.want {
			t.Fatalf("exportFilename(%s) = %q, want %q", tc.format, got, tc.want)
		}
		if !pattern.MatchString(got) {
			t.Fatalf("filename %q does not match expected shape", got)
		}
	}
}

func TestSerializeByteStable(t *testing.T) {
	items := exportItems()
	for _, format := range []types.ExportFormat{types.FormatJSON, types.FormatCSV, types.FormatMarkdown} {
		a, err := serialize(items, format, false)
		if err != nil {
			t.Fatalf("serialize(%s): %v", format, err)
		}
		b, err := serialize(items, format, false)
		if err != nil {
			t.Fatalf("serialize(%s) second pass: %v", format, err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("serialize(%s) is not byte-stable", format)
		}
	}
}

func TestSerializeJSONMetadataStripped(t *testing.T) {
	items := exportItems()

	without, err := serialize(items, types.FormatJSON, false)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(without), "metadata") {
		t.Fatal("metadata present without includeMetadata")
	}

	with, err := serialize(items, types.FormatJSON, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(with), `"source": "web"`) {
		t.Fatal("metadata missing with includeMetadata")
	}

	// Stripping operates on copies; the caller's items keep their metadata.
	if items[0].Metadata == nil {
		t.Fatal("serialize mutated caller's items")
	}
}

func TestSerializeCSV(t *testing.T) {
	data, err := serialize(exportItems(), types.FormatCSV, false)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "id,title,content,tags,collectionId,createdAt,updatedAt" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "work;important") {
		t.Fatalf("expected semicolon-joined tags in %q", lines[1])
	}
}

func TestSerializeMarkdown(t *testing.T) {
	data, err := serialize(exportItems(), types.FormatMarkdown, false)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)
	for _, want := range []string{
		"# Memories Export",
		"## First memory",
		"Tags: work, important",
		"alpha content",
		"## Second memory",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown output missing %q:\n%s", want, md)
		}
	}
}
