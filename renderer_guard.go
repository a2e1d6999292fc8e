package gekko

import "fmt"

// RendererTag records which renderer owns the window. Installing two
// different renderers into one App is a programming error.
type RendererTag struct {
	Name string
}

// EnsureSingleRenderer claims the App for the renderer name. Installing the
// same renderer again is allowed.
func EnsureSingleRenderer(app *App, cmd *Commands, name string) {
	if app == nil {
		panic("EnsureSingleRenderer: app is nil")
	}
	if tag, ok := Resource[RendererTag](app); ok {
		if tag.Name != name {
			app.Logger().Errorf("multiple renderers installed: %s and %s", tag.Name, name)
			panic(fmt.Sprintf("multiple renderers installed: %s and %s", tag.Name, name))
		}
		return
	}
	cmd.AddResources(&RendererTag{Name: name})
}
