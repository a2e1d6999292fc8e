package gekko

import (
	"bytes"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n int
}

type recordingModule struct {
	name  string
	order *[]string
}

func (m recordingModule) Install(app *App, cmd *Commands) {
	*m.order = append(*m.order, m.name)
}

func TestApp_ChangeState(t *testing.T) {
	app := &App{stateful: true, initialState: 1, state: 1, finalState: 2}

	app.changeState(2)
	assert.Equal(t, State(2), app.nextState)
	assert.True(t, app.stateTransitioning)

	app.executeChangeState(2)
	assert.Equal(t, State(2), app.state)
}

func TestApp_AddResources(t *testing.T) {
	app := &App{resources: make(map[reflect.Type]any)}

	c := &counter{}
	app.addResources(c)
	got, ok := Resource[counter](app)
	require.True(t, ok)
	assert.Same(t, c, got)

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(c)), func() {
		app.addResources(&counter{})
	})
	assert.Panics(t, func() { app.addResources(counter{}) }, "resources must be pointers")
}

func TestApp_UseModulesInstallsInOrder(t *testing.T) {
	var order []string
	NewApp().UseModules(
		recordingModule{name: "a", order: &order},
		recordingModule{name: "b", order: &order},
	)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestAppBuilder_Build(t *testing.T) {
	var order []string
	app := NewAppBuilder().
		UseStates(1, 10).
		UseModule(recordingModule{name: "a", order: &order}).
		Build()

	assert.True(t, app.stateful)
	assert.Equal(t, State(1), app.initialState)
	assert.Equal(t, State(10), app.finalState)
	assert.Equal(t, []string{"a"}, order)
}

func TestApp_RunFramesAndExit(t *testing.T) {
	app := NewApp()
	c := &counter{}
	app.Commands().AddResources(c)
	app.UseSystem(System(func(cmd *Commands, c *counter) {
		c.n++
		if c.n == 5 {
			cmd.Exit()
		}
	}).InStage(Update))

	app.RunFrames(3)
	assert.Equal(t, 3, c.n)
	assert.Equal(t, uint64(3), app.Frame())

	app.Run()
	assert.Equal(t, 5, c.n, "Run stops after the frame that requested exit")
}

func TestApp_StagesRunInOrder(t *testing.T) {
	app := NewApp()
	var order []string
	for _, stage := range []Stage{Render, Prelude, PostUpdate} {
		name := stage.Name
		app.UseSystem(System(func() { order = append(order, name) }).InStage(stage).RunAlways())
	}

	app.Step()
	assert.Equal(t, []string{"Prelude", "PostUpdate", "Render"}, order)
}

func TestApp_StatefulSystems(t *testing.T) {
	app := NewAppBuilder().UseStates(0, 2).Build()
	var log []string
	app.UseSystem(System(func() { log = append(log, "enter 0") }).InState(OnEnter(0)))
	app.UseSystem(System(func(cmd *Commands) {
		log = append(log, "execute 0")
		cmd.ChangeState(2)
	}).InState(OnExecute(0)))
	app.UseSystem(System(func() { log = append(log, "exit 2") }).InState(OnExit(2)))

	app.Run()
	assert.Equal(t, []string{"enter 0", "execute 0", "exit 2"}, log)
}

func TestApp_StatefulSystemInStatelessAppPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewApp().UseSystem(System(func() {}).InState(OnEnter(1)))
	})
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewApp()
	app.UseSystem(System(func(c *counter) {}))
	assert.Panics(t, func() { app.Step() })
}

func TestApp_Logger(t *testing.T) {
	assert.NotNil(t, NewApp().Logger(), "no logger installed gives a no-op logger")

	var buf bytes.Buffer
	app := NewApp().UseModules(LoggingModule{Prefix: "test", Output: &buf})
	app.Logger().Debugf("hidden")
	app.Logger().Infof("hello %d", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[test] INFO: hello 1")
}
