package middleware

import (
	"context"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
)

type ctxKey int

const callerKey ctxKey = iota

func WithCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// CallerFrom returns the authenticated caller, or the zero Caller when the
// request did not pass through Authenticate.
func CallerFrom(ctx context.Context) domain.Caller {
	v := ctx.Value(callerKey)
	if v == nil {
		return domain.Caller{}
	}
	return v.(domain.Caller)
}
