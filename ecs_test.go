package gekko

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPosition struct{ X, Y float32 }
type testVelocity struct{ X, Y float32 }
type testTag struct{}

func TestEcs_MakeEcsIsEmpty(t *testing.T) {
	ecs := MakeEcs()

	assert.Empty(t, ecs.archetypes)
	assert.Empty(t, ecs.entityIndex)
	assert.Zero(t, ecs.entityIdCounter)
	assert.Zero(t, ecs.componentIdCounter)
}

func TestEcs_AddEntitySplitsArchetypes(t *testing.T) {
	ecs := MakeEcs()

	bare := ecs.addEntity()
	pos := ecs.addEntity(testPosition{1, 2})
	pos2 := ecs.addEntity(&testPosition{3, 4})

	require.True(t, ecs.hasEntity(bare))
	assert.NotEqual(t, ecs.entityIndex[bare], ecs.entityIndex[pos])
	assert.Equal(t, ecs.entityIndex[pos], ecs.entityIndex[pos2], "pointer and value components share an archetype")
}

func TestEcs_AddComponentsKeepsData(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(testPosition{1, 2})

	ecs.addComponents(eid, testVelocity{3, 4}, &testTag{})

	arch := ecs.archetypes[ecs.entityIndex[eid]]
	assert.Len(t, arch.componentData, 3)

	v, ok := ecs.componentOf(eid, reflect.TypeFor[testPosition]())
	require.True(t, ok)
	assert.Equal(t, testPosition{1, 2}, v.Interface())
}

func TestEcs_RemoveComponents(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(testPosition{1, 2}, testVelocity{3, 4})

	ecs.removeComponents(eid, testVelocity{})

	_, ok := ecs.componentOf(eid, reflect.TypeFor[testVelocity]())
	assert.False(t, ok)
	v, ok := ecs.componentOf(eid, reflect.TypeFor[testPosition]())
	require.True(t, ok)
	assert.Equal(t, testPosition{1, 2}, v.Interface())
}

func TestEcs_InvalidComponentPanics(t *testing.T) {
	ecs := MakeEcs()
	assert.Panics(t, func() { ecs.addEntity(123) })
}

func TestEcs_ComponentIdsAreStable(t *testing.T) {
	ecs := MakeEcs()
	id1 := ecs.getComponentId(reflect.TypeFor[testPosition]())
	id2 := ecs.getComponentId(reflect.TypeFor[testPosition]())

	assert.Equal(t, id1, id2)
	assert.Equal(t, reflect.TypeFor[testPosition](), ecs.getComponentType(id1))
}

func TestEcs_DedupAndSortArchetypeKey(t *testing.T) {
	assert.Equal(t, archetypeKey{1, 2, 3}, dedupAndSortArchetypeKey([]componentId{3, 1, 2, 1, 3}))
}

func TestEcs_RemoveEntity(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(testPosition{1, 2})

	ecs.removeEntity(eid)
	assert.False(t, ecs.hasEntity(eid))

	// removing twice is a no-op
	ecs.removeEntity(eid)
}

func TestQuery_MapMatchesSupersets(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()

	cmd.AddEntity(testPosition{1, 0})
	both := cmd.AddEntity(testPosition{2, 0}, testVelocity{1, 0})
	tagged := cmd.AddEntity(testPosition{3, 0}, testVelocity{2, 0}, testTag{})
	cmd.AddEntity(testVelocity{3, 0})
	app.FlushCommands()

	seen := map[EntityId]testVelocity{}
	MakeQuery2[testPosition, testVelocity](cmd).Map(func(eid EntityId, p *testPosition, v *testVelocity) bool {
		seen[eid] = *v
		return true
	})
	assert.Equal(t, map[EntityId]testVelocity{both: {1, 0}, tagged: {2, 0}}, seen)

	seen = map[EntityId]testVelocity{}
	MakeQuery2[testPosition, testVelocity](cmd).Without(testTag{}).Map(func(eid EntityId, p *testPosition, v *testVelocity) bool {
		seen[eid] = *v
		return true
	})
	assert.Equal(t, map[EntityId]testVelocity{both: {1, 0}}, seen)
}

func TestQuery_MapOptionalAndStop(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	cmd.AddEntity(testPosition{1, 0})
	cmd.AddEntity(testPosition{2, 0}, testVelocity{1, 0})
	app.FlushCommands()

	withVelocity := 0
	total := 0
	MakeQuery2[testPosition, testVelocity](cmd).Map(func(eid EntityId, p *testPosition, v *testVelocity) bool {
		total++
		if v != nil {
			withVelocity++
		}
		return true
	}, testVelocity{})
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, withVelocity)

	calls := 0
	MakeQuery1[testPosition](cmd).Map(func(eid EntityId, p *testPosition) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls)
}

func TestCommands_ComponentMutationsApplyOnFlush(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()

	eid := cmd.AddEntity(testPosition{1, 2})
	assert.False(t, HasComponent[testPosition](cmd, eid))

	app.FlushCommands()
	p, ok := GetComponent[testPosition](cmd, eid)
	require.True(t, ok)
	p.X = 10

	cmd.AddComponents(eid, testVelocity{})
	app.FlushCommands()
	p, ok = GetComponent[testPosition](cmd, eid)
	require.True(t, ok)
	assert.Equal(t, float32(10), p.X)
	assert.True(t, HasComponent[testVelocity](cmd, eid))

	cmd.RemoveComponents(eid, testVelocity{})
	app.FlushCommands()
	assert.False(t, HasComponent[testVelocity](cmd, eid))
	assert.Len(t, cmd.GetAllComponents(eid), 1)

	cmd.RemoveEntity(eid)
	app.FlushCommands()
	assert.Nil(t, cmd.GetAllComponents(eid))
}
