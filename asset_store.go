package gekko

import (
	"encoding/binary"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// WeakAssetId builds a fixed, process-independent id from a 64-bit value.
// Built-in shaders and default assets use it so that registration is idempotent.
func WeakAssetId(value uint64) AssetId {
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[8:], value)
	return AssetId(u.String())
}

func (id AssetId) IsNil() bool {
	return id == ""
}

// Handle is a typed reference to an asset. The zero Handle refers to nothing.
type Handle[T any] struct {
	Id AssetId
}

func HandleOf[T any](id AssetId) Handle[T] {
	return Handle[T]{Id: id}
}

func (h Handle[T]) IsNil() bool {
	return h.Id.IsNil()
}

// Assets is a typed asset collection, installed as a resource per asset type.
// It tracks which entries changed since the last DrainChanged call.
type Assets[T any] struct {
	mu      sync.RWMutex
	items   map[AssetId]*T
	order   []AssetId
	changed map[AssetId]struct{}
}

func NewAssets[T any]() *Assets[T] {
	return &Assets[T]{
		items:   make(map[AssetId]*T),
		changed: make(map[AssetId]struct{}),
	}
}

func (a *Assets[T]) Add(value T) Handle[T] {
	h := Handle[T]{Id: makeAssetId()}
	a.Insert(h, value)
	return h
}

// Insert stores value under h, replacing any previous value.
func (a *Assets[T]) Insert(h Handle[T], value T) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.items[h.Id]; !ok {
		a.order = append(a.order, h.Id)
	}
	a.items[h.Id] = &value
	a.changed[h.Id] = struct{}{}
}

func (a *Assets[T]) Get(h Handle[T]) (*T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	v, ok := a.items[h.Id]
	return v, ok
}

// GetMut returns the stored value and marks it changed.
func (a *Assets[T]) GetMut(h Handle[T]) (*T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, ok := a.items[h.Id]
	if ok {
		a.changed[h.Id] = struct{}{}
	}
	return v, ok
}

func (a *Assets[T]) Remove(h Handle[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.items[h.Id]; !ok {
		return
	}
	delete(a.items, h.Id)
	delete(a.changed, h.Id)
	a.order = slices.DeleteFunc(a.order, func(id AssetId) bool { return id == h.Id })
}

func (a *Assets[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

// Each visits assets in insertion order until fn returns false.
func (a *Assets[T]) Each(fn func(Handle[T], *T) bool) {
	a.mu.RLock()
	ids := slices.Clone(a.order)
	a.mu.RUnlock()

	for _, id := range ids {
		v, ok := a.Get(Handle[T]{Id: id})
		if !ok {
			continue
		}
		if !fn(Handle[T]{Id: id}, v) {
			return
		}
	}
}

// DrainChanged returns the handles changed since the previous call.
func (a *Assets[T]) DrainChanged() []Handle[T] {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := make([]Handle[T], 0, len(a.changed))
	for _, id := range a.order {
		if _, ok := a.changed[id]; ok {
			res = append(res, Handle[T]{Id: id})
		}
	}
	clear(a.changed)
	return res
}
