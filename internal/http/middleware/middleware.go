package middleware

import (
	"net/http"

	"github.com/davidbz/pricelab/internal/config"
)

// Middleware wraps an http.Handler with additional functionality.
// Middlewares can be composed using the Chain function.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middlewares into a single middleware.
// The first middleware is the outermost wrapper and runs first on a request.
//
// Example:
//
//	chain := Chain(CORS(corsConfig), Trace(), Session())
//	handler := chain(mux)
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// BuildMiddlewareChain composes the middleware chain for production.
// Order matters: CORS -> Trace -> Session -> RateLimit.
func BuildMiddlewareChain(corsConfig *config.CORSConfig, serverConfig *config.ServerConfig) Middleware {
	return Chain(
		CORS(corsConfig),
		Trace(),
		Session(),
		RateLimit(serverConfig),
	)
}
