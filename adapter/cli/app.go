package cli

import (
	"github.com/jjohnson-47/nowqueue/internal/app"
)

// app holds the global application container for command handlers.
var container *app.Container

// SetApp sets the global application container.
func SetApp(c *app.Container) {
	container = c
}

// GetApp returns the global application container.
func GetApp() *app.Container {
	return container
}
