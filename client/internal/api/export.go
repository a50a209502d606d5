package api

import (
	"context"
	"fmt"

	interrors "github.com/knowledge-rag/knowledge-rag-go/client/internal/errors"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// ExportMemories asks the backend to serialize the given memories and
// returns the raw blob plus its content type. The bulk executor serializes
// client-side from cache; this server round trip exists for callers that
// want the backend's rendition (e.g. kragctl).
func (c *Client) ExportMemories(ctx context.Context, req types.ExportRequest) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if len(req.MemoryIDs) == 0 {
		return nil, "", fmt.Errorf("%w: no memory ids", types.ErrInvalidRequest)
	}
	if req.Format == "" {
		return nil, "", fmt.Errorf("%w: format required", types.ErrInvalidRequest)
	}
	resp, err := c.r.R().SetContext(ctx).
		SetBody(&req).
		SetDoNotParseResponse(false).
		Post("/api/export/memories")
	if err != nil {
		return nil, "", interrors.NewNetworkError("export memories", err)
	}
	if err := checkStatus(resp, "export memories"); err != nil {
		return nil, "", err
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}
