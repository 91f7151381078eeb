package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/sheetmerge/internal/core"
	mw "github.com/JonMunkholm/sheetmerge/internal/web/middleware"
)

// withRequestMetadata adds the client IP and User-Agent to ctx for import history.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, mw.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
