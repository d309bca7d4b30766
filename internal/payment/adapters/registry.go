package adapters

import (
	fundingdomain "github.com/ninjapaylabs/ninjapay/internal/funding/domain"
	"github.com/ninjapaylabs/ninjapay/internal/payment/domain"
)

// Registry maps provider tags to adapter factories. Adding a gateway means
// registering one factory here; call sites stay untouched.
type Registry struct {
	factories map[fundingdomain.ProviderType]domain.AdapterFactory
}

func NewRegistry(factories ...domain.AdapterFactory) *Registry {
	r := &Registry{factories: make(map[fundingdomain.ProviderType]domain.AdapterFactory, len(factories))}
	for _, f := range factories {
		r.factories[f.Provider()] = f
	}
	return r
}

func (r *Registry) Adapter(provider fundingdomain.ProviderType, cfg domain.AdapterConfig) (domain.GatewayAdapter, error) {
	factory, ok := r.factories[provider]
	if !ok {
		return nil, domain.ErrUnsupportedProvider
	}
	return factory.NewAdapter(cfg)
}
