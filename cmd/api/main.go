package main

import (
	"github.com/tyilmaz/registrar/internal/pkg/logger"
	"github.com/tyilmaz/registrar/internal/server"
)

// @title Registrar API
// @version 1.0
// @description Student records service managing students, a course catalog and enrollments

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Fatal().Err(err).Msg("Failed to initialize server")
	}

	// Blocks until shutdown signal
	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Server execution failed or shutdown encountered errors")
	}

	logger.Info().Msg("Application finished gracefully.")
}
