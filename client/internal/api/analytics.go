package api

import (
	"context"

	interrors "github.com/knowledge-rag/knowledge-rag-go/client/internal/errors"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// Stats retrieves aggregate counts for the stats dashboard.
func (c *Client) Stats(ctx context.Context) (*types.StatsResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := c.r.R().SetContext(ctx).
		SetResult(&types.StatsResponse{}).
		Get("/v1/analytics/stats")
	if err != nil {
		return nil, interrors.NewNetworkError("stats", err)
	}
	if err := checkStatus(resp, "stats"); err != nil {
		return nil, err
	}
	return resp.Result().(*types.StatsResponse), nil
}
