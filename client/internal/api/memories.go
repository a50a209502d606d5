package api

import (
	"context"
	"fmt"
	"strconv"

	interrors "github.com/knowledge-rag/knowledge-rag-go/client/internal/errors"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// ListMemories retrieves a page of memories.
func (c *Client) ListMemories(ctx context.Context, p types.ListMemoriesParams) (*types.ListMemoriesResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := c.r.R().SetContext(ctx).SetResult(&types.ListMemoriesResponse{})
	if p.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		req.SetQueryParam("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.CollectionID != "" {
		req.SetQueryParam("collectionId", p.CollectionID)
	}
	if p.Tag != "" {
		req.SetQueryParam("tag", p.Tag)
	}
	resp, err := req.Get("/v1/memories")
	if err != nil {
		return nil, interrors.NewNetworkError("list memories", err)
	}
	if err := checkStatus(resp, "list memories"); err != nil {
		return nil, err
	}
	return resp.Result().(*types.ListMemoriesResponse), nil
}

// GetMemory retrieves one memory by id.
func (c *Client) GetMemory(ctx context.Context, id string) (*types.MemoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: memory id required", types.ErrInvalidRequest)
	}
	resp, err := c.r.R().SetContext(ctx).
		SetResult(&types.MemoryItem{}).
		Get("/v1/memories/" + id)
	if err != nil {
		return nil, interrors.NewNetworkError("get memory", err)
	}
	if err := checkStatus(resp, "get memory"); err != nil {
		return nil, err
	}
	return resp.Result().(*types.MemoryItem), nil
}

// CreateMemory creates a new memory.
func (c *Client) CreateMemory(ctx context.Context, req types.CreateMemoryRequest) (*types.MemoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title required", types.ErrInvalidRequest)
	}
	resp, err := c.r.R().SetContext(ctx).
		SetBody(&req).
		SetResult(&types.MemoryItem{}).
		Post("/v1/memories")
	if err != nil {
		return nil, interrors.NewNetworkError("create memory", err)
	}
	if err := checkStatus(resp, "create memory"); err != nil {
		return nil, err
	}
	return resp.Result().(*types.MemoryItem), nil
}

// UpdateMemory applies a partial update (tags, collection move, edits) to
// one memory and returns the updated item.
func (c *Client) UpdateMemory(ctx context.Context, id string, req types.UpdateMemoryRequest) (*types.MemoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: memory id required", types.ErrInvalidRequest)
	}
	resp, err := c.r.R().SetContext(ctx).
		SetBody(&req).
		SetResult(&types.MemoryItem{}).
		Patch("/v1/memories/" + id)
	if err != nil {
		return nil, interrors.NewNetworkError("update memory", err)
	}
	if err := checkStatus(resp, "update memory"); err != nil {
		return nil, err
	}
	return resp.Result().(*types.MemoryItem), nil
}

// DeleteMemory deletes one memory by id.
func (c *Client) DeleteMemory(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: memory id required", types.ErrInvalidRequest)
	}
	resp, err := c.r.R().SetContext(ctx).Delete("/v1/memories/" + id)
	if err != nil {
		return interrors.NewNetworkError("delete memory", err)
	}
	return checkStatus(resp, "delete memory")
}

// BatchDeleteMemories deletes many memories in one round trip and reports
// per-id outcomes. Ids are independent; partial failure is expected.
func (c *Client) BatchDeleteMemories(ctx context.Context, ids []string) (*types.BatchDeleteResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids", types.ErrInvalidRequest)
	}
	resp, err := c.r.R().SetContext(ctx).
		SetBody(&types.BatchDeleteRequest{IDs: ids}).
		SetResult(&types.BatchDeleteResponse{}).
		Post("/v1/memories/batch-delete")
	if err != nil {
		return nil, interrors.NewNetworkError("batch delete", err)
	}
	if err := checkStatus(resp, "batch delete"); err != nil {
		return nil, err
	}
	return resp.Result().(*types.BatchDeleteResponse), nil
}
