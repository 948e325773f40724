package ember

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpInternal "github.com/onyx-go/ember/internal/http"
	"github.com/onyx-go/ember/internal/http/router"
)

// Phase identifies how far bootstrap has progressed. Phases are strictly
// sequential; none is ever re-entered.
type Phase int

const (
	PhaseConfigured Phase = iota
	PhaseDiscovered
	PhaseProvidersIntegrated
	PhaseLocallyClassified
	PhaseTypeChecked
	PhasePropertiesLoaded
	PhaseContainerInitialized
	PhaseInjected
	PhaseValidated
	PhaseProvidersInitialized
	PhaseServicesInitialized
	PhaseRoutesBound
	PhaseServing
	PhaseDestroyed
)

var phaseNames = map[Phase]string{
	PhaseConfigured:           "configured",
	PhaseDiscovered:           "discovered",
	PhaseProvidersIntegrated:  "providers_integrated",
	PhaseLocallyClassified:    "locally_classified",
	PhaseTypeChecked:          "type_checked",
	PhasePropertiesLoaded:     "properties_loaded",
	PhaseContainerInitialized: "container_initialized",
	PhaseInjected:             "injected",
	PhaseValidated:            "validated",
	PhaseProvidersInitialized: "providers_initialized",
	PhaseServicesInitialized:  "services_initialized",
	PhaseRoutesBound:          "routes_bound",
	PhaseServing:              "serving",
	PhaseDestroyed:            "destroyed",
}

func (p Phase) String() string {
	if name, exists := phaseNames[p]; exists {
		return name
	}
	return "unknown"
}

// Application is the bootstrap orchestrator. It discovers candidate
// entities, classifies them by capability, coordinates registration with the
// container, gates on type-safety checks, drives the service lifecycle,
// binds controller routes, and optionally serves HTTP. Teardown is
// guaranteed regardless of how far bootstrap gets.
type Application struct {
	config    *AppConfig
	container *Container
	router    *router.Router
	server    *http.Server
	entities  EntitySet
	source    EntitySource
	providers []EntityProvider
	handler   *ErrorHandler
	phase     Phase
	destroyed bool
}

// New loads the app-config snapshot from the given path and creates an
// application with the given entity providers.
func New(configPath string, providers ...EntityProvider) (*Application, error) {
	config, err := LoadAppConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(config, providers...), nil
}

// NewWithConfig creates an application from an already-built snapshot
func NewWithConfig(config *AppConfig, providers ...EntityProvider) *Application {
	r := router.NewRouter()
	app := &Application{
		config:    config,
		container: NewContainer(),
		router:    r,
		providers: providers,
		handler:   NewErrorHandler(false),
		phase:     PhaseConfigured,
	}

	r.SetApplication(app)
	r.Use(LoggerMiddleware())
	r.Use(RecoveryMiddleware(app.handler))

	return app
}

// Register adds locally discovered candidate entities. Entities that satisfy
// no capability are silently ignored at classification time.
func (app *Application) Register(entities ...interface{}) {
	app.entities = append(app.entities, entities...)
}

// SetEntitySource replaces the built-in entity list with an external source
func (app *Application) SetEntitySource(source EntitySource) {
	app.source = source
}

// Config returns the configuration snapshot
func (app *Application) Config() *AppConfig {
	return app.config
}

// Container returns the injection container
func (app *Application) Container() *Container {
	return app.container
}

// Router returns the HTTP router
func (app *Application) Router() *router.Router {
	return app.router
}

// Phase returns the last bootstrap phase reached
func (app *Application) Phase() Phase {
	return app.phase
}

// ErrorHandler implements the transport layer's application interface
func (app *Application) ErrorHandler() httpInternal.ErrorHandler {
	return app.handler
}

func (app *Application) enter(phase Phase) {
	app.phase = phase
	Debug("Bootstrap phase reached", map[string]interface{}{"phase": phase.String()})
}

// Run drives the whole bootstrap sequence and, when the server is enabled,
// blocks until it shuts down. Whatever happens, every service instance is
// moved to destroyed exactly once before Run returns; a fatal bootstrap
// error is propagated only after teardown has been attempted.
func (app *Application) Run() (err error) {
	defer app.teardown()

	if err = SetupLogging(app.config.Logging); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	if err = app.initApp(); err != nil {
		return err
	}
	if err = app.bindRoutes(); err != nil {
		return err
	}
	if app.config.Server.Enabled {
		err = app.serve()
	}
	return err
}

// teardown runs the destroy lifecycle exactly once per run. Per-instance
// failures are logged and do not stop the remaining instances from being
// torn down.
func (app *Application) teardown() {
	if app.destroyed {
		return
	}
	app.destroyed = true

	failures := destroyServices(app.container)
	app.enter(PhaseDestroyed)
	if len(failures) > 0 {
		Warn("Teardown finished with failures", map[string]interface{}{
			"failed": len(failures),
		})
	}
}

func (app *Application) initApp() error {
	// Discovered
	files, err := scanSourceFiles(app.config.SourceDirs, app.config.FileExtension)
	if err != nil {
		return err
	}
	local, err := app.discoverEntities()
	if err != nil {
		return err
	}
	app.enter(PhaseDiscovered)

	// ProvidersIntegrated: provider contributions go through the same
	// classification pipeline before any local entity, so they are
	// available as injection targets for local entities. Each provider's
	// contribution list is read once and pinned for validation.
	contributions := make([][]interface{}, len(app.providers))
	for i, provider := range app.providers {
		contributions[i] = provider.Entities()
		if err := app.registerEntities(contributions[i]); err != nil {
			return err
		}
	}
	for i, provider := range app.providers {
		app.container.RegisterProvider(provider, contributions[i])
	}
	app.enter(PhaseProvidersIntegrated)

	// LocallyClassified
	if err := app.registerEntities(local); err != nil {
		return err
	}
	app.enter(PhaseLocallyClassified)

	// TypeChecked
	if err := enforceTypeChecking(app.config.TypeCheckingMode, typeCheck(files)); err != nil {
		return err
	}
	app.enter(PhaseTypeChecked)

	// PropertiesLoaded
	if err := app.container.LoadProperties(app.config.PropertiesFilePath); err != nil {
		return err
	}
	app.enter(PhasePropertiesLoaded)

	// ContainerInitialized
	if err := app.container.Init(); err != nil {
		return err
	}
	app.enter(PhaseContainerInitialized)

	// Injected
	if err := app.container.InjectAll(); err != nil {
		return err
	}
	app.enter(PhaseInjected)

	// Validated
	if err := app.container.ValidateProviders(); err != nil {
		return err
	}
	app.enter(PhaseValidated)

	// ProvidersInitialized: providers run arbitrary code only after they
	// are fully wired and validated.
	for _, provider := range app.container.Providers() {
		initializer, ok := provider.(ProviderInitializer)
		if !ok {
			continue
		}
		if err := initializer.Init(); err != nil {
			return fmt.Errorf("provider %T init failed: %w", provider, err)
		}
	}
	app.enter(PhaseProvidersInitialized)

	// ServicesInitialized
	if err := initializeServices(app.container); err != nil {
		return err
	}
	app.enter(PhaseServicesInitialized)
	return nil
}

func (app *Application) discoverEntities() ([]interface{}, error) {
	source := app.source
	if source == nil {
		source = app.entities
	}
	entities, err := source.Entities()
	if err != nil {
		return nil, &DiscoveryError{Dir: strings.Join(app.config.SourceDirs, ","), Err: err}
	}
	return entities, nil
}

func (app *Application) registerEntities(entities []interface{}) error {
	for _, entity := range entities {
		if err := app.registerEntity(entity); err != nil {
			return err
		}
	}
	return nil
}

// registerEntity dispatches one registration per matched capability. An
// entity satisfying several capabilities is registered under all of them;
// nothing collapses the set.
func (app *Application) registerEntity(entity interface{}) error {
	for _, capability := range Classify(entity) {
		var err error
		switch capability {
		case CapabilityService:
			err = app.container.RegisterService(entity.(Service))
		case CapabilityController:
			err = app.container.RegisterController(entity.(Controller))
		case CapabilityProducerSet:
			err = app.container.RegisterProducerSet(entity.(ProducerSet))
		case CapabilityConfigBinding:
			err = app.container.RegisterConfigBinding(entity.(ConfigBinding))
		}
		if err != nil {
			return err
		}
		Debug("Registered entity", map[string]interface{}{
			"entity":     fmt.Sprintf("%T", entity),
			"capability": capability.String(),
		})
	}
	return nil
}

// bindRoutes mounts every controller's route table under its prefix and lets
// the controller attach request-level middleware. Runs only after every
// service has been injected and initialized.
func (app *Application) bindRoutes() error {
	for _, binding := range app.container.ControllerInstances() {
		binding.Controller.RegisterRoutes(binding.Routes)
		app.mountTable(binding.Prefix, binding.Routes)

		if registrar, ok := binding.Controller.(MiddlewareRegistrar); ok {
			registrar.RegisterMiddlewares(binding.Routes)
		}
		for _, middleware := range binding.Routes.middleware {
			app.router.Use(scopedMiddleware(binding.Prefix, middleware))
		}

		Info("Bound controller routes", map[string]interface{}{
			"controller": fmt.Sprintf("%T", binding.Controller),
			"prefix":     binding.Prefix,
			"routes":     binding.Routes.Len(),
		})
	}

	app.container.Freeze()
	app.enter(PhaseRoutesBound)
	return nil
}

func (app *Application) mountTable(prefix string, table *RouteTable) {
	group := app.router.Group(prefix)
	for _, entry := range table.entries {
		switch entry.method {
		case "GET":
			group.GET(entry.pattern, entry.handler, entry.middleware...)
		case "POST":
			group.POST(entry.pattern, entry.handler, entry.middleware...)
		case "PUT":
			group.PUT(entry.pattern, entry.handler, entry.middleware...)
		case "DELETE":
			group.DELETE(entry.pattern, entry.handler, entry.middleware...)
		case "PATCH":
			group.PATCH(entry.pattern, entry.handler, entry.middleware...)
		case "OPTIONS":
			group.OPTIONS(entry.pattern, entry.handler, entry.middleware...)
		case "HEAD":
			group.HEAD(entry.pattern, entry.handler, entry.middleware...)
		}
	}
}

// scopedMiddleware restricts controller middleware to requests under the
// controller's prefix. Router-level middleware runs per request, which is
// what makes attaching middleware after route binding effective. The match
// stops at a path-segment boundary, so "/api" never captures "/apiv2".
func scopedMiddleware(prefix string, middleware MiddlewareFunc) MiddlewareFunc {
	return func(c Context) error {
		if prefix != "" {
			path := c.Path()
			if path != prefix && !strings.HasPrefix(path, prefix+"/") {
				return c.Next()
			}
		}
		return middleware(c)
	}
}

func (app *Application) serve() error {
	app.server = &http.Server{
		Addr:         app.config.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	app.enter(PhaseServing)
	Info("Server starting", map[string]interface{}{"address": app.config.Server.Address()})

	err := app.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown asks the HTTP server to stop; Run then unwinds into teardown
func (app *Application) Shutdown(ctx context.Context) error {
	if app.server == nil {
		return nil
	}
	return app.server.Shutdown(ctx)
}
