package logic

import (
	"context"
	"encoding/json"
	"errors"
)

// Shared request-level errors surfaced by the logic layer.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidHolding     = errors.New("coinId and a positive quantity are required")
	ErrHoldingNotFound    = errors.New("holding not found")
)

// userIdFromCtx extracts the authenticated user id placed in the context by
// the JWT middleware.
func userIdFromCtx(ctx context.Context) (int64, error) {
	switch v := ctx.Value("userId").(type) {
	case json.Number:
		return v.Int64()
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, errors.New("no authenticated user in context")
	}
}
