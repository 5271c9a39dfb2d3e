package router

import "net/http"

// Chain composes a handler with middlewares and trailing observers.
type Chain struct {
	handler     http.Handler
	middlewares []func(http.Handler) http.Handler
	observers   []http.Handler
}

func NewChain(h http.Handler) *Chain {
	if h == nil {
		panic("chain handler cannot be nil")
	}
	return &Chain{handler: h}
}

// WithMiddleware adds middlewares to the chain. They execute in the order
// given, left to right, before the handler:
//
//	NewChain(h).WithMiddleware(mw1, mw2)
//
// runs mw1, then mw2, then h.
func (c *Chain) WithMiddleware(middlewares ...func(http.Handler) http.Handler) *Chain {
	for _, mw := range middlewares {
		c.middlewares = append([]func(http.Handler) http.Handler{mw}, c.middlewares...)
	}
	return c
}

// WithObservers adds handlers that run after the main chain has finished.
// Observers run even when a middleware short-circuits, and must not write to
// the response.
func (c *Chain) WithObservers(observers ...http.Handler) *Chain {
	c.observers = append(c.observers, observers...)
	return c
}

// Handler returns the fully composed handler.
func (c *Chain) Handler() http.Handler {
	handler := c.handler
	for _, mw := range c.middlewares {
		handler = mw(handler)
	}

	if len(c.observers) == 0 {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handler.ServeHTTP(w, req)
		for _, obs := range c.observers {
			obs.ServeHTTP(w, req)
		}
	})
}
