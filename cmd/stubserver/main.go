// Command stubserver runs the wire-compatible stand-in for the remote
// user directory, seeded with deterministic users. Point the client at
// it with API_BASE_URL=http://localhost:8080/api.
package main

import (
	"flag"
	"fmt"
	"log"

	"userdir/internal/stub"
	"userdir/pkg/logger"
)

func main() {
	port := flag.Int("port", 8080, "listen port")
	seed := flag.Int("seed", 12, "number of seeded users")
	flag.Parse()

	l, err := logger.NewWithConfig(logger.Config{
		Level:       "info",
		Format:      "console",
		OutputPath:  "stdout",
		ServiceName: "userdir-stub",
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	server := stub.New(stub.Seed(*seed), l)
	if err := server.Run(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalf("stub server exited with error: %v", err)
	}
}
