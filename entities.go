package ember

// Service is a lifecycle-managed singleton. OnInit runs once after the whole
// entity graph has been injected; OnDestroy runs once at teardown.
type Service interface {
	OnInit() error
	OnDestroy() error
}

// Controller contributes HTTP routes under a prefix. Routes are collected
// into a deferred table at binding time, after every service is initialized.
type Controller interface {
	Prefix() string
	RegisterRoutes(r Routes)
}

// MiddlewareRegistrar lets a controller attach request-level middleware to
// its route table after the routes themselves are bound.
type MiddlewareRegistrar interface {
	RegisterMiddlewares(r Routes)
}

// ProducerSet exposes a named group of factories. Each producer becomes a
// container binding resolvable by its name.
type ProducerSet interface {
	SetName() string
	Producers() map[string]interface{}
}

// ConfigBinding is decoded from the subtree of the application property
// source under its key during property loading.
type ConfigBinding interface {
	ConfigKey() string
}

// EntityProvider contributes candidate entities from outside the local set.
// Contributions go through the same classification pipeline as local
// entities, before any of them.
type EntityProvider interface {
	Entities() []interface{}
	SetContainer(c *Container)
}

// ProviderValidator is an optional provider hook that cross-checks the
// container after injection. A validation failure aborts bootstrap.
type ProviderValidator interface {
	Validate(c *Container) error
}

// ProviderInitializer is an optional provider hook that runs arbitrary code
// once the provider's contributions are wired and validated.
type ProviderInitializer interface {
	Init() error
}

// Capability names one role an entity can play. An entity may hold several.
type Capability int

const (
	CapabilityService Capability = iota
	CapabilityController
	CapabilityProducerSet
	CapabilityConfigBinding
)

var capabilityNames = map[Capability]string{
	CapabilityService:       "service",
	CapabilityController:    "controller",
	CapabilityProducerSet:   "producer_set",
	CapabilityConfigBinding: "config_binding",
}

func (c Capability) String() string {
	if name, exists := capabilityNames[c]; exists {
		return name
	}
	return "unknown"
}

// Classify reports every capability the entity satisfies, checking each
// capability independently. It never registers, instantiates, or otherwise
// mutates anything; an empty result means the entity is ignored.
func Classify(entity interface{}) []Capability {
	var capabilities []Capability
	if _, ok := entity.(Service); ok {
		capabilities = append(capabilities, CapabilityService)
	}
	if _, ok := entity.(Controller); ok {
		capabilities = append(capabilities, CapabilityController)
	}
	if _, ok := entity.(ProducerSet); ok {
		capabilities = append(capabilities, CapabilityProducerSet)
	}
	if _, ok := entity.(ConfigBinding); ok {
		capabilities = append(capabilities, CapabilityConfigBinding)
	}
	return capabilities
}
