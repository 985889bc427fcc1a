package extract

import (
	"github.com/joseph-ayodele/menu-pricer/constants"
)

// Registry maps supplier ids to their line extractors. Register everything before
// sharing the registry between goroutines.
type Registry struct {
	byID     map[constants.SupplierID]LineExtractor
	fallback LineExtractor
}

// NewRegistry builds a registry; unknown suppliers dispatch to fallback.
func NewRegistry(fallback LineExtractor, extractors ...LineExtractor) *Registry {
	r := &Registry{
		byID:     make(map[constants.SupplierID]LineExtractor, len(extractors)),
		fallback: fallback,
	}
	for _, x := range extractors {
		r.Register(x)
	}
	return r
}

// DefaultRegistry knows every built-in supplier layout.
func DefaultRegistry() *Registry {
	return NewRegistry(Generic{},
		Europastry{},
		Deca{},
		Perymuz{},
		CocaCola{},
		Llinares{},
	)
}

// Register adds or replaces the extractor for x.Supplier().
func (r *Registry) Register(x LineExtractor) {
	r.byID[x.Supplier()] = x
}

// For returns the extractor for id, or the fallback.
func (r *Registry) For(id constants.SupplierID) LineExtractor {
	if x, ok := r.byID[id]; ok {
		return x
	}
	return r.fallback
}

// Suppliers lists the registered supplier ids.
func (r *Registry) Suppliers() []constants.SupplierID {
	out := make([]constants.SupplierID, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	return out
}
