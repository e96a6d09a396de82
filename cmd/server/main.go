package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogcore/internal/api"
	"blogcore/internal/app/service"
	"blogcore/internal/common/security"
	"blogcore/internal/domain/repository"
	"blogcore/internal/platform/config"
	"blogcore/internal/platform/database"
)

func main() {
	// 1. Load Configuration (aborts when the signing key is missing)
	config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()

	// 3. Security components get their configuration injected; nothing
	//    below reads the signing key from a global.
	tokens := security.NewTokenService(security.TokenConfig{
		Secret:   config.AppConfig.JWTKey,
		Lifetime: config.AppConfig.JWTExp,
		Issuer:   config.AppConfig.JWTIssuer,
		Audience: config.AppConfig.JWTAudience,
	})
	hasher := security.NewHasher(config.AppConfig.HashIterations)

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	roleRepo := repository.NewPgRoleRepository(database.DB)
	authorRepo := repository.NewPgAuthorRepository(database.DB)

	// 5. Initialize Services
	authService := service.NewAuthService(userRepo, roleRepo, authorRepo, hasher, tokens, config.AppConfig.AdminSetupKey, database.DB)
	authorService := service.NewAuthorService(authorRepo, userRepo, roleRepo)
	bootstrapService := service.NewBootstrapService(userRepo, roleRepo, authorRepo, hasher, database.DB)

	// 6. Bootstrap reference data (idempotent, race-safe across instances)
	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootstrapCancel()
	if err := bootstrapService.EnsureBaselineRoles(bootstrapCtx); err != nil {
		log.Fatalf("Failed to ensure baseline roles: %v", err)
	}
	if err := bootstrapService.EnsureAdmin(bootstrapCtx, service.BootstrapAdmin{
		Username:  config.AppConfig.BootstrapAdminUsername,
		Email:     config.AppConfig.BootstrapAdminEmail,
		Password:  config.AppConfig.BootstrapAdminPassword,
		FirstName: config.AppConfig.BootstrapAdminFirstName,
		LastName:  config.AppConfig.BootstrapAdminLastName,
	}); err != nil {
		log.Fatalf("Failed to provision bootstrap admin: %v", err)
	}
	log.Println("Bootstrap complete.")

	if config.AppConfig.AdminSetupEnabled {
		log.Println("WARNING: admin setup endpoint is enabled; disable it after initial setup.")
	}

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(tokens, authService, authorService, bootstrapService, config.AppConfig.AdminSetupEnabled)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
