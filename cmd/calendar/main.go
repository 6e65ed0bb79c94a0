package main

import (
	"calendar/pkg/app"
	"calendar/pkg/config"
)

const ServiceName = "calendar"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.StoreBackend == config.MongoBackend {
		cfg.SetMongo()
	}

	cfg.Log.Info("Starting Calendar service")
	serverApp := app.NewApplication(cfg)
	if err := serverApp.SetApp(); err != nil {
		cfg.Log.Fatal("Failed to initialize services", "error", err)
	}
	serverApp.Run()
}
