package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"

	"github.com/lchen-dev/safety-portal/internal/domain"
	"github.com/lchen-dev/safety-portal/internal/excel"
	"github.com/lchen-dev/safety-portal/internal/repository"
	serverPkg "github.com/lchen-dev/safety-portal/internal/server"
)

func ServerCmd(ctx context.Context) error {
	godotenv.Load()
	port := 9090
	_port := os.Getenv("PORT")
	if _port != "" {
		port, _ = strconv.Atoi(_port)
	}
	logger := newLogger("api")

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	appRepo, accountRepo, err := newRepositories(ctx)
	if err != nil {
		return err
	}

	templatePath := os.Getenv("EXCEL_TEMPLATE_PATH")
	if templatePath == "" {
		templatePath = "template.xlsx"
	}
	filler := excel.NewFiller(templatePath)

	server, err := serverPkg.NewServer(logger, sessionSecret, appRepo, accountRepo, filler)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	srv := server.Server(port)

	// metrics
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		http.ListenAndServe(":9091", mux)
	}()

	go func() {
		_ = srv.ListenAndServe()
	}()
	logger.Info("started server", slog.Int("port", port))
	<-ctx.Done()
	_ = srv.Shutdown(ctx)
	return nil
}

// newRepositories selects the storage backend: the Firestore document store
// (default, matching the production deployment) or Postgres for self-hosted
// setups.
func newRepositories(ctx context.Context) (domain.ApplicationRepository, domain.AccountRepository, error) {
	backend := os.Getenv("STORAGE_BACKEND")
	switch backend {
	case "postgres":
		pool, err := newDatabasePool(ctx, 16)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating db pool: %w", err)
		}
		return repository.NewPostgresApplication(pool), repository.NewPostgresAccount(pool), nil
	case "", "firestore":
		credentialsJson := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_CONTENT")
		opt := option.WithCredentialsJSON([]byte(credentialsJson))
		config := &firebase.Config{ProjectID: os.Getenv("FIREBASE_PROJECT_ID")}
		app, err := firebase.NewApp(ctx, config, opt)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing app: %w", err)
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating firestore client: %w", err)
		}
		return repository.NewFirestoreApplication(client), repository.NewFirestoreAccount(client), nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND: %v", backend)
	}
}
