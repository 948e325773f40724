package router

import (
	"net/http/httptest"
	"testing"

	httpInternal "github.com/onyx-go/ember/internal/http"
)

func TestNewRouter(t *testing.T) {
	router := NewRouter()

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
	if router.routes == nil {
		t.Error("router.routes should be initialized")
	}
	if router.middleware == nil {
		t.Error("router.middleware should be initialized")
	}
	if router.notFound == nil {
		t.Error("router.notFound should be initialized")
	}
}

func TestRouterAddRoute(t *testing.T) {
	router := NewRouter()

	handler := func(c httpInternal.Context) error {
		return nil
	}

	router.GET("/test", handler)

	if len(router.routes) != 1 {
		t.Errorf("expected 1 route, got %d", len(router.routes))
	}

	route := router.routes[0]
	if route.method != "GET" {
		t.Errorf("expected method GET, got %s", route.method)
	}
	if route.pattern != "/test" {
		t.Errorf("expected pattern /test, got %s", route.pattern)
	}
}

func TestRouterHTTPMethods(t *testing.T) {
	router := NewRouter()

	handler := func(c httpInternal.Context) error {
		return nil
	}

	router.GET("/get", handler)
	router.POST("/post", handler)
	router.PUT("/put", handler)
	router.DELETE("/delete", handler)
	router.PATCH("/patch", handler)
	router.OPTIONS("/options", handler)
	router.HEAD("/head", handler)

	if len(router.routes) != 7 {
		t.Errorf("expected 7 routes, got %d", len(router.routes))
	}
}

func TestRouterMatch(t *testing.T) {
	router := NewRouter()

	handler := func(c httpInternal.Context) error {
		return c.String(200, "ok")
	}

	router.GET("/users/{id}", handler)
	router.GET("/posts/{id:int}/comments", handler)

	route, params := router.match("GET", "/users/42")
	if route == nil {
		t.Fatal("expected a match for /users/42")
	}
	if params["id"] != "42" {
		t.Errorf("expected id param 42, got %s", params["id"])
	}

	route, params = router.match("GET", "/posts/7/comments")
	if route == nil {
		t.Fatal("expected a match for /posts/7/comments")
	}
	if params["id"] != "7" {
		t.Errorf("expected id param 7, got %s", params["id"])
	}

	// int constraint rejects non-numeric segments
	route, _ = router.match("GET", "/posts/abc/comments")
	if route != nil {
		t.Error("expected the int constraint to reject /posts/abc/comments")
	}

	// method mismatch
	route, _ = router.match("POST", "/users/42")
	if route != nil {
		t.Error("expected no match for a different method")
	}
}

func TestRouterConstraints(t *testing.T) {
	router := NewRouter()

	handler := func(c httpInternal.Context) error {
		return nil
	}

	router.GET("/alpha/{name:alpha}", handler)
	router.GET("/mixed/{code:alphanum}", handler)

	if route, _ := router.match("GET", "/alpha/hello"); route == nil {
		t.Error("expected alpha constraint to accept letters")
	}
	if route, _ := router.match("GET", "/alpha/h3llo"); route != nil {
		t.Error("expected alpha constraint to reject digits")
	}
	if route, _ := router.match("GET", "/mixed/abc123"); route == nil {
		t.Error("expected alphanum constraint to accept letters and digits")
	}
	if route, _ := router.match("GET", "/mixed/ab-cd"); route != nil {
		t.Error("expected alphanum constraint to reject punctuation")
	}
}

func TestRouterServeHTTP(t *testing.T) {
	router := NewRouter()

	router.GET("/hello/{name}", func(c httpInternal.Context) error {
		return c.String(200, "hello "+c.Param("name"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/hello/world", nil))

	if w.Code != 200 {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "hello world" {
		t.Errorf("expected body 'hello world', got %q", w.Body.String())
	}
}

func TestRouterNotFound(t *testing.T) {
	router := NewRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))

	if w.Code != 404 {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestRouterCustomNotFound(t *testing.T) {
	router := NewRouter()
	router.SetNotFound(func(c httpInternal.Context) error {
		return c.String(404, "custom not found")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))

	if w.Body.String() != "custom not found" {
		t.Errorf("expected the custom handler, got %q", w.Body.String())
	}
}

func TestRouterMiddlewareOrder(t *testing.T) {
	router := NewRouter()

	var order []string
	router.Use(func(c httpInternal.Context) error {
		order = append(order, "first")
		return c.Next()
	})
	router.Use(func(c httpInternal.Context) error {
		order = append(order, "second")
		return c.Next()
	})

	router.GET("/ordered", func(c httpInternal.Context) error {
		order = append(order, "handler")
		return c.String(200, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ordered", nil))

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "handler" {
		t.Errorf("unexpected middleware order: %v", order)
	}
}

func TestRouterMiddlewareAddedAfterRoutes(t *testing.T) {
	router := NewRouter()

	router.GET("/late", func(c httpInternal.Context) error {
		return c.String(200, "ok")
	})

	// middleware registered after the route must still apply
	hits := 0
	router.Use(func(c httpInternal.Context) error {
		hits++
		return c.Next()
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/late", nil))

	if hits != 1 {
		t.Errorf("expected late middleware to run, got %d hits", hits)
	}
}

func TestRouterGroup(t *testing.T) {
	router := NewRouter()

	handler := func(c httpInternal.Context) error {
		return c.String(200, "ok")
	}

	group := router.Group("/api")
	group.GET("/users", handler)
	group.POST("/users", handler)

	if len(router.routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(router.routes))
	}
	if router.routes[0].pattern != "/api/users" {
		t.Errorf("expected group prefix applied, got %s", router.routes[0].pattern)
	}
}

func TestRouterNestedGroups(t *testing.T) {
	router := NewRouter()

	handler := func(c httpInternal.Context) error {
		return nil
	}

	api := router.Group("/api")
	v1 := api.Group("/v1")
	v1.GET("/status", handler)

	if router.routes[0].pattern != "/api/v1/status" {
		t.Errorf("expected nested prefixes combined, got %s", router.routes[0].pattern)
	}
}

func TestRouterGroupMiddleware(t *testing.T) {
	router := NewRouter()

	calls := 0
	group := router.Group("/admin", func(c httpInternal.Context) error {
		calls++
		return c.Next()
	})
	group.GET("/dashboard", func(c httpInternal.Context) error {
		return c.String(200, "ok")
	})

	router.GET("/public", func(c httpInternal.Context) error {
		return c.String(200, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin/dashboard", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/public", nil))

	if calls != 1 {
		t.Errorf("expected group middleware only on group routes, got %d calls", calls)
	}
}

func TestRouterGetRoutes(t *testing.T) {
	router := NewRouter()

	router.GET("/users/{id}", func(c httpInternal.Context) error { return nil })

	routes := router.GetRoutes()
	if len(routes) != 1 {
		t.Fatalf("expected 1 route info, got %d", len(routes))
	}
	if routes[0].Method != "GET" || routes[0].Pattern != "/users/{id}" {
		t.Errorf("unexpected route info: %+v", routes[0])
	}
	if len(routes[0].ParamNames) != 1 || routes[0].ParamNames[0] != "id" {
		t.Errorf("expected param names extracted, got %v", routes[0].ParamNames)
	}
}
