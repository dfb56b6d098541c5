package main

import (
	"context"
	"log"

	"trustvote/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (postgres, election-engine module, http server).
// 3) Serve HTTP until the process is terminated.
func main() {
	log.Println("trustvote api starting")
	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("trustvote api stopped with error: %v", err)
	}
}
