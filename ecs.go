package gekko

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] = map[T]struct{}

type Ecs struct {
	archetypes  map[archetypeId]*archetype
	entityIndex map[EntityId]archetypeId

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId

	componentIdCounterLock sync.Mutex
	componentIdCounter     componentId
	componentTypeIdMap     map[reflect.Type]componentId
	componentIdTypeMap     map[componentId]reflect.Type
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:         make(map[archetypeId]*archetype),
		entityIndex:        make(map[EntityId]archetypeId),
		componentTypeIdMap: make(map[reflect.Type]componentId),
		componentIdTypeMap: make(map[componentId]reflect.Type),
	}
}

// archetype stores one typed slice per component; rows of removed entities are recycled.
type archetype struct {
	id            archetypeId
	key           archetypeKey
	entities      map[EntityId]row
	componentData map[componentId]any
	recycled      []row
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	return ecs.insertEntity(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	archId, arch := ecs.getOrMakeArchetype(ecs.getArchetypeKey(components...))

	r := ecs.archetypeReserveRow(arch)
	arch.entities[entityId] = r
	for _, component := range components {
		ecs.writeComponent(arch, r, component)
	}

	ecs.entityIndex[entityId] = archId
	return entityId
}

func (ecs *Ecs) hasEntity(entityId EntityId) bool {
	_, ok := ecs.entityIndex[entityId]
	return ok
}

func (ecs *Ecs) removeEntity(entityId EntityId) {
	if !ecs.hasEntity(entityId) {
		return
	}
	ecs.recycleEntity(entityId)
}

func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	srcArch := ecs.archetypes[ecs.entityIndex[entityId]]
	srcRow := srcArch.entities[entityId]

	dstKey := dedupAndSortArchetypeKey(append(slices.Clone(srcArch.key), ecs.getArchetypeKey(components...)...))
	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)
	ecs.migrate(entityId, srcArch, srcRow, dstArchId, dstArch, components)
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	srcArch := ecs.archetypes[ecs.entityIndex[entityId]]
	srcRow := srcArch.entities[entityId]

	removeSet := make(set[componentId])
	for _, c := range components {
		removeSet[ecs.getComponentId(componentType(c))] = struct{}{}
	}

	dstKey := make(archetypeKey, 0, len(srcArch.key))
	for _, compId := range srcArch.key {
		if _, drop := removeSet[compId]; !drop {
			dstKey = append(dstKey, compId)
		}
	}
	if len(dstKey) == len(srcArch.key) {
		return
	}

	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)
	ecs.migrate(entityId, srcArch, srcRow, dstArchId, dstArch, nil)
}

func (ecs *Ecs) migrate(entityId EntityId, srcArch *archetype, srcRow row, dstArchId archetypeId, dstArch *archetype, extra []any) {
	dstRow := ecs.archetypeReserveRow(dstArch)

	// Only components present in both archetypes move over.
	for _, compId := range dstArch.key {
		if srcData, ok := srcArch.componentData[compId]; ok {
			reflectSliceSet(dstArch.componentData[compId], int(dstRow), reflectSliceGet(srcData, int(srcRow)))
		}
	}
	for _, component := range extra {
		ecs.writeComponent(dstArch, dstRow, component)
	}

	ecs.recycleEntity(entityId)
	dstArch.entities[entityId] = dstRow
	ecs.entityIndex[entityId] = dstArchId
}

func (ecs *Ecs) componentOf(entityId EntityId, compType reflect.Type) (reflect.Value, bool) {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return reflect.Value{}, false
	}
	arch := ecs.archetypes[archId]

	ecs.componentIdCounterLock.Lock()
	compId, known := ecs.componentTypeIdMap[compType]
	ecs.componentIdCounterLock.Unlock()
	if !known {
		return reflect.Value{}, false
	}

	data, ok := arch.componentData[compId]
	if !ok {
		return reflect.Value{}, false
	}
	return reflectSliceGet(data, int(arch.entities[entityId])), true
}

func (ecs *Ecs) writeComponent(dstArch *archetype, dstRow row, component any) {
	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	reflectSliceSet(dstArch.componentData[ecs.getComponentId(componentType(component))], int(dstRow), value)
}

func (ecs *Ecs) recycleEntity(entityId EntityId) {
	arch := ecs.archetypes[ecs.entityIndex[entityId]]

	arch.recycled = append(arch.recycled, arch.entities[entityId])
	delete(arch.entities, entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) getOrMakeArchetype(key archetypeKey) (archetypeId, *archetype) {
	id := getArchetypeId(key)

	if arch, ok := ecs.archetypes[id]; ok {
		return id, arch
	}

	arch := &archetype{
		id:            id,
		key:           key,
		entities:      make(map[EntityId]row),
		componentData: make(map[componentId]any),
	}
	for _, compId := range arch.key {
		arch.componentData[compId] = reflectSliceMake(ecs.getComponentType(compId))
	}

	ecs.archetypes[id] = arch
	return id, arch
}

func (ecs *Ecs) archetypeReserveRow(arch *archetype) row {
	if n := len(arch.recycled); n > 0 {
		r := arch.recycled[n-1]
		arch.recycled = arch.recycled[:n-1]
		return r
	}

	r := row(len(arch.entities))
	for _, compId := range arch.key {
		arch.componentData[compId] = reflectSliceAppend(
			arch.componentData[compId],
			reflect.Zero(ecs.getComponentType(compId)),
		)
	}
	return r
}

// componentType unwraps pointers; components must be structs.
func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected component to be a struct or a pointer to a struct, got %v", t))
	}
	return t
}

// getArchetypeKey returns the sorted, deduplicated component ids of an archetype.
// The archetypeId is a hash of this key.
func (ecs *Ecs) getArchetypeKey(components ...any) archetypeKey {
	res := make(archetypeKey, 0, len(components))
	for _, component := range components {
		res = append(res, ecs.getComponentId(componentType(component)))
	}
	return dedupAndSortArchetypeKey(res)
}

func dedupAndSortArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

func getArchetypeId(key archetypeKey) archetypeId {
	hash := fnv.New64a()
	b := make([]byte, 8)
	for _, compId := range key {
		binary.LittleEndian.PutUint64(b, uint64(compId))
		hash.Write(b)
	}
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idGeneratorLock.Lock()
	defer ecs.idGeneratorLock.Unlock()

	id := ecs.entityIdCounter
	ecs.entityIdCounter++
	return id
}

func (ecs *Ecs) getComponentId(compType reflect.Type) componentId {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	if id, ok := ecs.componentTypeIdMap[compType]; ok {
		return id
	}
	id := ecs.componentIdCounter
	ecs.componentIdCounter++
	ecs.componentTypeIdMap[compType] = id
	ecs.componentIdTypeMap[id] = compType
	return id
}

func (ecs *Ecs) getComponentType(compId componentId) reflect.Type {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	if t, ok := ecs.componentIdTypeMap[compId]; ok {
		return t
	}
	panic("ComponentID not registered")
}
