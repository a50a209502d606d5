package api

import (
	"context"
	"fmt"

	interrors "github.com/knowledge-rag/knowledge-rag-go/client/internal/errors"
	"github.com/knowledge-rag/knowledge-rag-go/client/internal/types"
)

// Login exchanges credentials for a bearer token and installs it on the
// client. Token issuance semantics live server-side; this only moves bytes.
func (c *Client) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password required", types.ErrInvalidRequest)
	}
	resp, err := c.r.R().SetContext(ctx).
		SetBody(&types.LoginRequest{Email: email, Password: password}).
		SetResult(&types.LoginResponse{}).
		Post("/v1/auth/login")
	if err != nil {
		return nil, interrors.NewNetworkError("login", err)
	}
	if err := checkStatus(resp, "login"); err != nil {
		return nil, err
	}
	lr := resp.Result().(*types.LoginResponse)
	c.SetAuthToken(lr.Token)
	return lr, nil
}
