package main

import (
	"log"

	_ "sprinthub/docs"
	"sprinthub/internal/config"
	"sprinthub/internal/server"
)

// @title           SprintHub API
// @version         1.0
// @description     Sprint lifecycle and task migration service.

// @host      localhost:8084
// @BasePath  /

// @securityDefinitions.apikey ServiceToken
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a service token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
