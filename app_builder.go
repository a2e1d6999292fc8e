package gekko

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: NewApp()}
}

// UseStates switches the app to stateful mode. Must be called before any
// stateful system is registered.
func (b *AppBuilder) UseStates(initialState State, finalState State) *AppBuilder {
	b.app.stateful = true
	b.app.initialState = initialState
	b.app.finalState = finalState
	for _, stage := range b.app.stages {
		b.app.initStatefulStage(stage)
	}

	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

func (b *AppBuilder) Build() *App {
	app := b.app
	app.UseModules(b.modules...)
	app.FlushCommands()

	return app
}
