// Package main — точка входа watch-party-service (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/psds-microservice/watch-party-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
