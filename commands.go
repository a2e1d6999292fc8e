package gekko

import "reflect"

type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

// Exit stops the app after the current frame.
func (cmd *Commands) Exit() {
	cmd.app.exitRequested = true
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) UseSystem(system systemScheduleBuilder) *Commands {
	cmd.app.UseSystem(system)
	return cmd
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}

func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingCompAdd{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingCompRemoval{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

// GetComponent returns a pointer into the entity's component storage.
// The pointer is valid until the next FlushCommands.
func GetComponent[T any](cmd *Commands, entityId EntityId) (*T, bool) {
	val, ok := cmd.app.ecs.componentOf(entityId, reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return val.Addr().Interface().(*T), true
}

// HasComponent reports whether the entity carries a component of type T.
func HasComponent[T any](cmd *Commands, entityId EntityId) bool {
	_, ok := cmd.app.ecs.componentOf(entityId, reflect.TypeFor[T]())
	return ok
}

func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	ecs := cmd.app.ecs
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil
	}
	arch := ecs.archetypes[archId]
	row := arch.entities[entityId]

	res := make([]any, 0, len(arch.key))
	for _, compId := range arch.key {
		res = append(res, reflectSliceGet(arch.componentData[compId], int(row)).Interface())
	}
	return res
}
