package main

import (
	"log/slog"
	"os"

	"retailcli/internal/app"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
