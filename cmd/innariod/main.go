// Command innariod runs the hymn planning API server without the CLI
// wrapper, for use under a service manager. Configuration comes from the
// default config file locations and environment variables only.
package main

import (
	"context"
	"errors"
	"log"

	"innario/internal/config"
	"innario/internal/serverun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	err = serverun.Run(context.Background(), cfg, serverun.Options{})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("run server: %v", err)
	}
}
