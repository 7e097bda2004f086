package main

import (
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/app"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
