package telegram

import "github.com/m3rciful/reviewbot/core/telegram/middleware"

// DefaultMiddlewares builds the shared middleware chain for bots. Updates
// from group chats and channels are dropped unless allowGroups is set.
func DefaultMiddlewares(allowGroups bool) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}
	if !allowGroups {
		mws = append(mws, Middleware{Name: "private_only", Use: middleware.PrivateOnly})
	}
	mws = append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})
	return mws
}

// Names returns middleware names in registration order.
func Names(mws []Middleware) []string {
	out := make([]string, 0, len(mws))
	for _, mw := range mws {
		out = append(out, mw.Name)
	}
	return out
}
