package router

import (
	"strings"

	httpInternal "github.com/onyx-go/ember/internal/http"
)

// RouteGroup represents a group of routes with a common prefix and middleware
type RouteGroup struct {
	router     *Router
	prefix     string
	middleware []httpInternal.MiddlewareFunc
}

// GET registers a GET route in the group
func (g *RouteGroup) GET(pattern string, handler httpInternal.HandlerFunc, middleware ...httpInternal.MiddlewareFunc) {
	g.router.GET(g.prefix+pattern, handler, g.merge(middleware)...)
}

// POST registers a POST route in the group
func (g *RouteGroup) POST(pattern string, handler httpInternal.HandlerFunc, middleware ...httpInternal.MiddlewareFunc) {
	g.router.POST(g.prefix+pattern, handler, g.merge(middleware)...)
}

// PUT registers a PUT route in the group
func (g *RouteGroup) PUT(pattern string, handler httpInternal.HandlerFunc, middleware ...httpInternal.MiddlewareFunc) {
	g.router.PUT(g.prefix+pattern, handler, g.merge(middleware)...)
}

// DELETE registers a DELETE route in the group
func (g *RouteGroup) DELETE(pattern string, handler httpInternal.HandlerFunc, middleware ...httpInternal.MiddlewareFunc) {
	g.router.DELETE(g.prefix+pattern, handler, g.merge(middleware)...)
}

// PATCH registers a PATCH route in the group
func (g *RouteGroup) PATCH(pattern string, handler httpInternal.HandlerFunc, middleware ...httpInternal.MiddlewareFunc) {
	g.router.PATCH(g.prefix+pattern, handler, g.merge(middleware)...)
}

// OPTIONS registers an OPTIONS route in the group
func (g *RouteGroup) OPTIONS(pattern string, handler httpInternal.HandlerFunc, middleware ...httpInternal.MiddlewareFunc) {
	g.router.OPTIONS(g.prefix+pattern, handler, g.merge(middleware)...)
}

// HEAD registers a HEAD route in the group
func (g *RouteGroup) HEAD(pattern string, handler httpInternal.HandlerFunc, middleware ...httpInternal.MiddlewareFunc) {
	g.router.HEAD(g.prefix+pattern, handler, g.merge(middleware)...)
}

// Group creates a nested route group with additional prefix and middleware
func (g *RouteGroup) Group(prefix string, middleware ...httpInternal.MiddlewareFunc) httpInternal.RouteGroup {
	return &RouteGroup{
		router:     g.router,
		prefix:     g.prefix + strings.TrimSuffix(prefix, "/"),
		middleware: g.merge(middleware),
	}
}

// Use adds middleware to the route group; it applies to routes added after
// this call
func (g *RouteGroup) Use(middleware ...httpInternal.MiddlewareFunc) {
	g.middleware = append(g.middleware, middleware...)
}

// Prefix returns the current prefix of the route group
func (g *RouteGroup) Prefix() string {
	return g.prefix
}

func (g *RouteGroup) merge(middleware []httpInternal.MiddlewareFunc) []httpInternal.MiddlewareFunc {
	merged := make([]httpInternal.MiddlewareFunc, 0, len(g.middleware)+len(middleware))
	merged = append(merged, g.middleware...)
	return append(merged, middleware...)
}
