package ember

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
)

// registration tracks a single candidate entity across the capabilities it
// was registered under. One entity type gets one registration and one
// instance, no matter how many capabilities it satisfies.
type registration struct {
	name         string
	prototype    interface{}
	capabilities map[Capability]bool
	prefix       string
	routes       *RouteTable
	instance     interface{}
}

// Container is the injection container. It accumulates registrations during
// bootstrap, builds instances in Init, resolves tagged fields in InjectAll,
// and is frozen for read-only use once routes are bound.
type Container struct {
	bindings   map[string]interface{}
	instances  map[string]interface{}
	registry   map[string]*registration
	order      []string
	providers  []providerRecord
	properties map[string]json.RawMessage
	frozen     bool
	mutex      sync.RWMutex
}

// providerRecord pins the entity names a provider contributed at integration
// time, so later validation never depends on the provider recomputing its
// contribution list.
type providerRecord struct {
	provider    EntityProvider
	contributed []string
}

// ControllerBinding pairs a controller instance with the prefix and route
// table assigned to it at registration time.
type ControllerBinding struct {
	Controller Controller
	Prefix     string
	Routes     *RouteTable
}

// NewContainer creates an empty container
func NewContainer() *Container {
	return &Container{
		bindings:  make(map[string]interface{}),
		instances: make(map[string]interface{}),
		registry:  make(map[string]*registration),
	}
}

// register records an entity under a capability. Registering the same entity
// type again is last-write-wins: the prototype is replaced, the capability
// set grows, and the iteration order keeps the original slot.
func (c *Container) register(entity interface{}, capability Capability) (*registration, error) {
	t := reflect.TypeOf(entity)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, &RegistrationError{
			Entity: fmt.Sprintf("%T", entity),
			Reason: "entity must be a pointer to a struct",
		}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	name := t.String()
	if c.frozen {
		return nil, &RegistrationError{Entity: name, Reason: "container is frozen"}
	}

	reg, exists := c.registry[name]
	if !exists {
		reg = &registration{
			name:         name,
			capabilities: make(map[Capability]bool),
		}
		c.registry[name] = reg
		c.order = append(c.order, name)
	}
	reg.prototype = entity
	reg.capabilities[capability] = true
	return reg, nil
}

// RegisterService registers a lifecycle-managed singleton service type
func (c *Container) RegisterService(svc Service) error {
	_, err := c.register(svc, CapabilityService)
	return err
}

// RegisterController registers a controller type. The route prefix is
// computed once here and a fresh empty route table is attached, before any
// other registration reads them.
func (c *Container) RegisterController(ctrl Controller) error {
	reg, err := c.register(ctrl, CapabilityController)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	reg.prefix = normalizePrefix(ctrl.Prefix())
	if reg.routes == nil {
		reg.routes = NewRouteTable()
	}
	return nil
}

// RegisterProducerSet registers a named factory group with the container's
// lookup table. Each producer becomes a singleton binding resolvable as
// "<set name>.<producer>", so sets cannot collide on producer names.
func (c *Container) RegisterProducerSet(ps ProducerSet) error {
	if _, err := c.register(ps, CapabilityProducerSet); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	group := ps.SetName()
	for name, factory := range ps.Producers() {
		c.bindings[group+"."+name] = &singletonBinding{factory: factory}
	}
	return nil
}

// RegisterConfigBinding registers a typed property binding
func (c *Container) RegisterConfigBinding(b ConfigBinding) error {
	_, err := c.register(b, CapabilityConfigBinding)
	return err
}

// RegisterProvider records an entity provider together with the entities it
// contributed and hands it a back-reference to the container. Only
// classifiable contributions are pinned for validation.
func (c *Container) RegisterProvider(p EntityProvider, entities []interface{}) {
	var contributed []string
	for _, entity := range entities {
		if len(Classify(entity)) == 0 {
			continue
		}
		contributed = append(contributed, reflect.TypeOf(entity).String())
	}

	c.mutex.Lock()
	c.providers = append(c.providers, providerRecord{provider: p, contributed: contributed})
	c.mutex.Unlock()

	p.SetContainer(c)
}

// Providers returns the registered entity providers in registration order
func (c *Container) Providers() []EntityProvider {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	providers := make([]EntityProvider, len(c.providers))
	for i, record := range c.providers {
		providers[i] = record.provider
	}
	return providers
}

// LoadProperties reads the application property source and decodes each
// registered config binding from the JSON subtree under its key. Binding
// instances are created here so they exist before the dependency graph is
// built.
func (c *Container) LoadProperties(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read properties file %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse properties file %s: %w", path, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.properties = raw

	for _, name := range c.order {
		reg := c.registry[name]
		if !reg.capabilities[CapabilityConfigBinding] {
			continue
		}

		if reg.instance == nil {
			reg.instance = reg.prototype
			c.instances[name] = reg.instance
		}

		key := reg.instance.(ConfigBinding).ConfigKey()
		sub, exists := raw[key]
		if !exists {
			return fmt.Errorf("properties file %s has no value for key %q wanted by %s", path, key, name)
		}
		if err := json.Unmarshal(sub, reg.instance); err != nil {
			return fmt.Errorf("failed to decode properties key %q into %s: %w", key, name, err)
		}
	}
	return nil
}

// Property returns the raw JSON value for a top-level property key
func (c *Container) Property(key string) (json.RawMessage, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	value, exists := c.properties[key]
	return value, exists
}

// Init builds the dependency graph: one singleton instance per registered
// entity type, in registration order. The registered prototype is adopted as
// the instance, so values built with their own constructors keep their
// internal state. Instances adopted earlier (config bindings) are kept.
func (c *Container) Init() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, name := range c.order {
		reg := c.registry[name]
		if reg.instance == nil {
			reg.instance = reg.prototype
		}
		c.instances[name] = reg.instance
	}
	return nil
}

// InjectAll resolves and assigns every `inject`-tagged field of every
// registered instance. An unresolvable field aborts with an InjectionError.
func (c *Container) InjectAll() error {
	c.mutex.RLock()
	names := append([]string(nil), c.order...)
	c.mutex.RUnlock()

	for _, name := range names {
		c.mutex.RLock()
		instance := c.registry[name].instance
		c.mutex.RUnlock()

		if instance == nil {
			return &InjectionError{Target: name, Field: "", Err: fmt.Errorf("container not initialized")}
		}
		if err := c.injectFields(instance); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) injectFields(target interface{}) error {
	v := reflect.ValueOf(target).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, tagged := field.Tag.Lookup("inject")
		if !tagged {
			continue
		}

		key := tag
		if key == "" {
			key = field.Type.String()
		}

		dep, err := c.Make(key)
		if err != nil {
			return &InjectionError{Target: t.String(), Field: field.Name, Err: err}
		}

		fv := v.Field(i)
		if !fv.CanSet() {
			return &InjectionError{Target: t.String(), Field: field.Name, Err: fmt.Errorf("field is unexported")}
		}
		dv := reflect.ValueOf(dep)
		if !dv.Type().AssignableTo(field.Type) {
			return &InjectionError{
				Target: t.String(),
				Field:  field.Name,
				Err:    fmt.Errorf("cannot assign %s to %s", dv.Type(), field.Type),
			}
		}
		fv.Set(dv)
	}
	return nil
}

// ValidateProviders cross-checks every provider's pinned contributions
// against the registration tables and runs each provider's own validation
// hook.
func (c *Container) ValidateProviders() error {
	c.mutex.RLock()
	records := append([]providerRecord(nil), c.providers...)
	c.mutex.RUnlock()

	for _, record := range records {
		name := fmt.Sprintf("%T", record.provider)

		for _, entityName := range record.contributed {
			c.mutex.RLock()
			reg, exists := c.registry[entityName]
			resolved := exists && reg.instance != nil
			c.mutex.RUnlock()

			if !resolved {
				return &ValidationError{
					Provider: name,
					Err:      fmt.Errorf("contributed entity %s was never registered", entityName),
				}
			}
		}

		if validator, ok := record.provider.(ProviderValidator); ok {
			if err := validator.Validate(c); err != nil {
				return &ValidationError{Provider: name, Err: err}
			}
		}
	}
	return nil
}

// ServiceInstances returns every registered service instance in stable
// registration order
func (c *Container) ServiceInstances() []Service {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var services []Service
	for _, name := range c.order {
		reg := c.registry[name]
		if !reg.capabilities[CapabilityService] || reg.instance == nil {
			continue
		}
		services = append(services, reg.instance.(Service))
	}
	return services
}

// ControllerInstances returns every registered controller with its prefix
// and route table, in stable registration order
func (c *Container) ControllerInstances() []*ControllerBinding {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var controllers []*ControllerBinding
	for _, name := range c.order {
		reg := c.registry[name]
		if !reg.capabilities[CapabilityController] || reg.instance == nil {
			continue
		}
		controllers = append(controllers, &ControllerBinding{
			Controller: reg.instance.(Controller),
			Prefix:     reg.prefix,
			Routes:     reg.routes,
		})
	}
	return controllers
}

// Freeze marks the container read-only; further registrations are rejected
func (c *Container) Freeze() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.frozen = true
}

// Bind registers a transient factory under a name
func (c *Container) Bind(name string, factory interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.bindings[name] = factory
}

// Singleton registers a factory whose result is cached after first resolution
func (c *Container) Singleton(name string, factory interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.bindings[name] = &singletonBinding{factory: factory}
}

// Instance registers an already-built value under a name
func (c *Container) Instance(name string, instance interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.instances[name] = instance
}

// Make resolves a value by name, constructing it through its factory if
// needed
func (c *Container) Make(name string) (interface{}, error) {
	c.mutex.RLock()

	if instance, exists := c.instances[name]; exists {
		c.mutex.RUnlock()
		return instance, nil
	}

	binding, exists := c.bindings[name]
	if !exists {
		c.mutex.RUnlock()
		return nil, fmt.Errorf("binding not found: %s", name)
	}

	c.mutex.RUnlock()

	if singleton, ok := binding.(*singletonBinding); ok {
		// Resolve outside the lock: the factory may itself resolve its
		// arguments through Make.
		instance, err := c.resolve(singleton.factory)
		if err != nil {
			return nil, err
		}

		c.mutex.Lock()
		defer c.mutex.Unlock()
		if existing, exists := c.instances[name]; exists {
			return existing, nil
		}
		c.instances[name] = instance
		return instance, nil
	}

	return c.resolve(binding)
}

// resolve invokes a factory function, resolving each argument from the
// container by its type name
func (c *Container) resolve(factory interface{}) (interface{}, error) {
	factoryValue := reflect.ValueOf(factory)
	factoryType := factoryValue.Type()

	if factoryType.Kind() != reflect.Func {
		return factory, nil
	}

	numIn := factoryType.NumIn()
	args := make([]reflect.Value, numIn)

	for i := 0; i < numIn; i++ {
		argType := factoryType.In(i)

		if argType == reflect.TypeOf((*Container)(nil)) {
			args[i] = reflect.ValueOf(c)
			continue
		}

		typeName := argType.String()
		dependency, err := c.Make(typeName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve dependency %s: %v", typeName, err)
		}

		args[i] = reflect.ValueOf(dependency)
	}

	results := factoryValue.Call(args)

	if len(results) == 0 {
		return nil, fmt.Errorf("factory function must return at least one value")
	}

	if len(results) == 2 && !results[1].IsNil() {
		err := results[1].Interface().(error)
		return nil, err
	}

	return results[0].Interface(), nil
}

// Has reports whether a name resolves to an instance or binding
func (c *Container) Has(name string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, hasInstance := c.instances[name]
	_, hasBinding := c.bindings[name]

	return hasInstance || hasBinding
}

type singletonBinding struct {
	factory interface{}
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimSuffix(prefix, "/")
}
