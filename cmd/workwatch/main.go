// cmd/workwatch/main.go
//
// Entry point for the workwatch service. All lifecycle wiring lives in
// internal/app/bootstrap; app.Run drives the hooks from config loading
// through graceful shutdown.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/waffle/app"
	"github.com/workwatchhq/workwatch/internal/app/bootstrap"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
