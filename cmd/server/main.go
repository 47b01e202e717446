package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/rs/cors"

	"github.com/retailtally/backend/internal/api"
	"github.com/retailtally/backend/internal/auth"
	"github.com/retailtally/backend/internal/config"
	"github.com/retailtally/backend/internal/extraction"
	"github.com/retailtally/backend/internal/service"
	"github.com/retailtally/backend/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var storeImpl store.Store
	if cfg.UseMemoryStore {
		log.Println("Using in-memory store for local development")
		storeImpl = store.NewMemoryStore()
	} else {
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirestoreProject)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()
		storeImpl = store.NewFirestoreStore(firestoreClient)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	var refiner *extraction.Refiner
	if cfg.GeminiAPIKey != "" {
		refiner = extraction.NewRefiner(cfg.GeminiAPIKey)
		log.Println("Gemini refinement enabled for receipt uploads")
	} else {
		log.Println("GEMINI_API_KEY not set, receipt uploads use local extraction only")
	}

	jobs := extraction.NewJobStore(cfg.UploadJobTTL)
	defer jobs.Stop()

	handler := api.New(
		service.NewUserService(storeImpl, tokens),
		service.NewSalesService(storeImpl),
		service.NewCommissionService(storeImpl),
		service.NewUploadService(extraction.NewEngine(), refiner, jobs, cfg.UploadDir),
		service.NewExportService(storeImpl),
		service.NewAssistantService(),
		tokens,
	)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
		},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: c.Handler(handler.Router()),
	}

	log.Printf("Starting server on port %s", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
