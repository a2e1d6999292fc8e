package gekko

import (
	"reflect"
)

// Queries iterate every archetype holding the requested components.
// Types listed as optionals may be missing; the callback then receives nil.
// Iteration stops when the callback returns false.
type Query1[A any] struct{ query }
type Query2[A, B any] struct{ query }
type Query3[A, B, C any] struct{ query }
type Query4[A, B, C, D any] struct{ query }

type query struct {
	ecs     *Ecs
	without []reflect.Type
}

func MakeQuery1[A any](cmd *Commands) Query1[A] {
	return Query1[A]{query{ecs: cmd.app.ecs}}
}

func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] {
	return Query2[A, B]{query{ecs: cmd.app.ecs}}
}

func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{query{ecs: cmd.app.ecs}}
}

func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{query{ecs: cmd.app.ecs}}
}

func (q query) withoutTypes(components []any) query {
	res := query{ecs: q.ecs, without: append([]reflect.Type(nil), q.without...)}
	for _, c := range components {
		res.without = append(res.without, componentType(c))
	}
	return res
}

// Without skips archetypes carrying any of the given components.
func (q Query1[A]) Without(components ...any) Query1[A] {
	return Query1[A]{q.withoutTypes(components)}
}

func (q Query2[A, B]) Without(components ...any) Query2[A, B] {
	return Query2[A, B]{q.withoutTypes(components)}
}

func (q Query3[A, B, C]) Without(components ...any) Query3[A, B, C] {
	return Query3[A, B, C]{q.withoutTypes(components)}
}

func (q Query4[A, B, C, D]) Without(components ...any) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{q.withoutTypes(components)}
}

func (q query) excluded(arch *archetype) bool {
	for _, t := range q.without {
		if _, ok := arch.componentData[q.ecs.getComponentId(t)]; ok {
			return true
		}
	}
	return false
}

// column resolves the typed storage of T in arch. ok is false when the
// archetype must be skipped.
func column[T any](ecs *Ecs, arch *archetype, opt set[componentId]) (data []T, ok bool) {
	id := ecs.getComponentId(reflect.TypeFor[T]())
	if raw, found := arch.componentData[id]; found {
		return raw.([]T), true
	}
	if _, optional := opt[id]; optional {
		return nil, true
	}
	return nil, false
}

func at[T any](data []T, r row) *T {
	if data == nil {
		return nil
	}
	return &data[r]
}

func identifyOptionals(ecs *Ecs, optionals ...any) set[componentId] {
	res := make(set[componentId], len(optionals))
	for _, o := range optionals {
		res[ecs.getComponentId(componentType(o))] = struct{}{}
	}
	return res
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)
	for _, arch := range q.ecs.archetypes {
		if q.excluded(arch) {
			continue
		}
		as, ok := column[A](q.ecs, arch, opt)
		if !ok {
			continue
		}
		for eid, r := range arch.entities {
			if !m(eid, at(as, r)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)
	for _, arch := range q.ecs.archetypes {
		if q.excluded(arch) {
			continue
		}
		as, okA := column[A](q.ecs, arch, opt)
		bs, okB := column[B](q.ecs, arch, opt)
		if !okA || !okB {
			continue
		}
		for eid, r := range arch.entities {
			if !m(eid, at(as, r), at(bs, r)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)
	for _, arch := range q.ecs.archetypes {
		if q.excluded(arch) {
			continue
		}
		as, okA := column[A](q.ecs, arch, opt)
		bs, okB := column[B](q.ecs, arch, opt)
		cs, okC := column[C](q.ecs, arch, opt)
		if !okA || !okB || !okC {
			continue
		}
		for eid, r := range arch.entities {
			if !m(eid, at(as, r), at(bs, r), at(cs, r)) {
				return
			}
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	opt := identifyOptionals(q.ecs, optionals...)
	for _, arch := range q.ecs.archetypes {
		if q.excluded(arch) {
			continue
		}
		as, okA := column[A](q.ecs, arch, opt)
		bs, okB := column[B](q.ecs, arch, opt)
		cs, okC := column[C](q.ecs, arch, opt)
		ds, okD := column[D](q.ecs, arch, opt)
		if !okA || !okB || !okC || !okD {
			continue
		}
		for eid, r := range arch.entities {
			if !m(eid, at(as, r), at(bs, r), at(cs, r), at(ds, r)) {
				return
			}
		}
	}
}
