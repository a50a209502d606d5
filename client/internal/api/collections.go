package api

import (
	"context"
	"fmt"

	interrors "github.com/knowledge-rag/knowledge-rag-go/client/internal/errors"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// ListCollections retrieves all collections.
func (c *Client) ListCollections(ctx context.Context) ([]types.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := c.r.R().SetContext(ctx).
		SetResult(&types.ListCollectionsResponse{}).
		Get("/v1/collections")
	if err != nil {
		return nil, interrors.NewNetworkError("list collections", err)
	}
	if err := checkStatus(resp, "list collections"); err != nil {
		return nil, err
	}
	return resp.Result().(*types.ListCollectionsResponse).Collections, nil
}

// CreateCollection creates a named collection, the target of move
// operations.
func (c *Client) CreateCollection(ctx context.Context, name string) (*types.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: collection name required", types.ErrInvalidRequest)
	}
	resp, err := c.r.R().SetContext(ctx).
		SetBody(&types.CreateCollectionRequest{Name: name}).
		SetResult(&types.Collection{}).
		Post("/v1/collections")
	if err != nil {
		return nil, interrors.NewNetworkError("create collection", err)
	}
	if err := checkStatus(resp, "create collection"); err != nil {
		return nil, err
	}
	return resp.Result().(*types.Collection), nil
}
