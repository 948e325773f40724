package ember

import (
	httpInternal "github.com/onyx-go/ember/internal/http"
)

// Aliases for the transport-layer types so application code only imports ember
type Context = httpInternal.Context
type HandlerFunc = httpInternal.HandlerFunc
type MiddlewareFunc = httpInternal.MiddlewareFunc
type Router = httpInternal.Router

// Routes is the surface a Controller uses to populate its route table and
// attach middleware. Nothing reaches the live router until the table is
// mounted.
type Routes interface {
	GET(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc)
	POST(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PUT(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc)
	DELETE(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc)
	PATCH(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc)
	OPTIONS(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc)
	HEAD(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc)
	Use(middleware ...MiddlewareFunc)
}

type routeEntry struct {
	method     string
	pattern    string
	handler    HandlerFunc
	middleware []MiddlewareFunc
}

// RouteTable is the mutable route-table handle attached to a Controller at
// registration time. It collects route definitions and middleware; the
// orchestrator replays them into the router once every service is
// initialized.
type RouteTable struct {
	entries    []routeEntry
	middleware []MiddlewareFunc
}

// NewRouteTable creates an empty route table
func NewRouteTable() *RouteTable {
	return &RouteTable{}
}

func (t *RouteTable) add(method, pattern string, handler HandlerFunc, middleware []MiddlewareFunc) {
	t.entries = append(t.entries, routeEntry{
		method:     method,
		pattern:    pattern,
		handler:    handler,
		middleware: middleware,
	})
}

// GET registers a GET route in the table
func (t *RouteTable) GET(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc) {
	t.add("GET", pattern, handler, middleware)
}

// POST registers a POST route in the table
func (t *RouteTable) POST(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc) {
	t.add("POST", pattern, handler, middleware)
}

// PUT registers a PUT route in the table
func (t *RouteTable) PUT(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc) {
	t.add("PUT", pattern, handler, middleware)
}

// DELETE registers a DELETE route in the table
func (t *RouteTable) DELETE(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc) {
	t.add("DELETE", pattern, handler, middleware)
}

// PATCH registers a PATCH route in the table
func (t *RouteTable) PATCH(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc) {
	t.add("PATCH", pattern, handler, middleware)
}

// OPTIONS registers an OPTIONS route in the table
func (t *RouteTable) OPTIONS(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc) {
	t.add("OPTIONS", pattern, handler, middleware)
}

// HEAD registers a HEAD route in the table
func (t *RouteTable) HEAD(pattern string, handler HandlerFunc, middleware ...MiddlewareFunc) {
	t.add("HEAD", pattern, handler, middleware)
}

// Use attaches middleware to every request under the controller's prefix
func (t *RouteTable) Use(middleware ...MiddlewareFunc) {
	t.middleware = append(t.middleware, middleware...)
}

// Len returns the number of collected routes
func (t *RouteTable) Len() int {
	return len(t.entries)
}

// ResourceController interface for RESTful controllers
type ResourceController interface {
	Index(Context) error
	Show(Context) error
	Store(Context) error
	Update(Context) error
	Destroy(Context) error
}

// Resource registers RESTful convention routes for a resource
func (t *RouteTable) Resource(name string, controller ResourceController) {
	t.GET("/"+name, controller.Index)
	t.GET("/"+name+"/{id}", controller.Show)
	t.POST("/"+name, controller.Store)
	t.PUT("/"+name+"/{id}", controller.Update)
	t.DELETE("/"+name+"/{id}", controller.Destroy)
}
