package material

import (
	"slices"
	"sync"

	gekko "github.com/gekko3d/gekko-npr"
)

// PreparedMaterial is a material reduced to what a backend needs to draw it.
// Version changes whenever any other field does.
type PreparedMaterial struct {
	Encoded  Encoded
	Flags    uint32
	Uniform  []byte
	Key      PipelineKey
	Pipeline PipelineDescriptor
	Textures []TextureSlot
	Version  uint64
}

// Source is a per-material-type set of prepared materials.
type Source interface {
	Name() string
	EachPrepared(fn func(id gekko.AssetId, p *PreparedMaterial) bool)
}

// Registry collects the prepared sets of every installed material plugin so
// a backend can walk them without knowing the material types.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
}

func (r *Registry) Add(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, s)
}

func (r *Registry) Sources() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.sources)
}

// Prepared holds the prepared form of every material of type M.
type Prepared[M any] struct {
	mu    sync.RWMutex
	name  string
	items map[gekko.AssetId]*PreparedMaterial
	order []gekko.AssetId
}

func NewPrepared[M any](name string) *Prepared[M] {
	return &Prepared[M]{
		name:  name,
		items: make(map[gekko.AssetId]*PreparedMaterial),
	}
}

func (p *Prepared[M]) Name() string {
	return p.name
}

func (p *Prepared[M]) Get(h gekko.Handle[M]) (*PreparedMaterial, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pm, ok := p.items[h.Id]
	return pm, ok
}

func (p *Prepared[M]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// EachPrepared visits entries in the order they were first prepared.
func (p *Prepared[M]) EachPrepared(fn func(id gekko.AssetId, pm *PreparedMaterial) bool) {
	p.mu.RLock()
	ids := slices.Clone(p.order)
	p.mu.RUnlock()

	for _, id := range ids {
		pm, ok := p.Get(gekko.HandleOf[M](id))
		if !ok {
			continue
		}
		if !fn(id, pm) {
			return
		}
	}
}

func (p *Prepared[M]) put(id gekko.AssetId, pm *PreparedMaterial) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.items[id]; !ok {
		p.order = append(p.order, id)
	}
	p.items[id] = pm
}

// retain drops every entry not in keep.
func (p *Prepared[M]) retain(keep map[gekko.AssetId]struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id := range p.items {
		if _, ok := keep[id]; !ok {
			delete(p.items, id)
		}
	}
	p.order = slices.DeleteFunc(p.order, func(id gekko.AssetId) bool {
		_, ok := keep[id]
		return !ok
	})
}
