package main

import (
	"context"
	"log"

	"github.com/abdul977/voicenotes/internal/config"
	"github.com/abdul977/voicenotes/internal/server"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
