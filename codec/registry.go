package codec

import (
	"fmt"
	"sync"
)

// Registry is an ordered, name-indexed set of codecs. It is constructed once
// per session and handed to schema construction and the detector.
type Registry struct {
	mu         sync.RWMutex
	codecs     []Codec
	index      map[string]int
	candidates []string
}

// DetectionOrder is the fixed priority in which types are tried during
// schema detection. Ties resolve to the earlier entry.
var DetectionOrder = []string{
	TypeYearmonth, TypeGeopoint, TypeDuration, TypeGeojson, TypeObject,
	TypeArray, TypeDatetime, TypeTime, TypeDate, TypeInteger, TypeNumber,
	TypeBoolean, TypeYear, TypeString,
}

// NewRegistry returns a registry holding the built-in codecs.
func NewRegistry() *Registry {
	r := &Registry{index: map[string]int{}}
	for _, c := range builtins() {
		r.Register(c)
	}
	r.candidates = append([]string(nil), DetectionOrder...)
	return r
}

func builtins() []Codec {
	return []Codec{
		anyCodec{}, stringCodec{}, integerCodec{}, numberCodec{}, booleanCodec{},
		dateCodec{}, timeCodec{}, datetimeCodec{}, yearCodec{}, yearmonthCodec{},
		durationCodec{}, arrayCodec{}, objectCodec{}, geopointCodec{}, geojsonCodec{},
	}
}

// Register adds c, replacing a codec already registered under the same type.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[c.Type()]; ok {
		r.codecs[i] = c
		return
	}
	r.index[c.Type()] = len(r.codecs)
	r.codecs = append(r.codecs, c)
}

// Lookup returns the codec registered under name.
func (r *Registry) Lookup(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.codecs[i], true
}

// MustLookup is Lookup that panics on unknown names. Intended for built-ins.
func (r *Registry) MustLookup(name string) Codec {
	c, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("codec: type %q is not registered", name))
	}
	return c
}

// Types lists registered type names in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.codecs))
	for i, c := range r.codecs {
		out[i] = c.Type()
	}
	return out
}

// Candidates returns the detection priority list.
func (r *Registry) Candidates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.candidates...)
}

// SetCandidates replaces the detection priority list. Every name must be
// registered.
func (r *Registry) SetCandidates(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		if _, ok := r.index[n]; !ok {
			return fmt.Errorf("codec: candidate type %q is not registered", n)
		}
	}
	r.candidates = append([]string(nil), names...)
	return nil
}
