package server

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lchen-dev/safety-portal/internal/backup"
	"github.com/lchen-dev/safety-portal/internal/domain"
	"github.com/lchen-dev/safety-portal/internal/excel"
)

//go:embed static
var staticFiles embed.FS

type server struct {
	logger *slog.Logger

	sessionSecret []byte

	appRepository     domain.ApplicationRepository
	accountRepository domain.AccountRepository

	importer *backup.Importer
	filler   *excel.Filler

	staticFilesFs fs.FS
}

func NewServer(logger *slog.Logger, sessionSecret string, appRepo domain.ApplicationRepository, accountRepo domain.AccountRepository, filler *excel.Filler) (*server, error) {
	staticFilesFs, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}
	return &server{
		logger:            logger,
		sessionSecret:     []byte(sessionSecret),
		appRepository:     appRepo,
		accountRepository: accountRepo,
		importer:          backup.NewImporter(logger, appRepo),
		filler:            filler,
		staticFilesFs:     staticFilesFs,
	}, nil
}

func (s *server) Server(port int) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.routes(),
	}
}

func errorQuery(errMsg string) string {
	if errMsg == "" {
		return ""
	}
	return fmt.Sprintf("error=%v", errMsg)
}

func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.staticFilesFs))))
	r.Get("/up", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "up!")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/form/"+domain.SuperAdminName, http.StatusSeeOther)
	})
	r.Get("/form/{tenant}", s.handleGetForm)
	r.Post("/form/{tenant}", s.handlePostForm)

	r.Get("/login", s.handleGetLogin)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Post("/api/export-excel", s.handleApiExportExcel)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.scopeVerifier)
		r.Get("/", s.handleGetAdmin)
		r.Post("/applications/{app-id}/delete", s.handleDeleteApplication)
		r.Get("/export", s.handleExportCSV)
		r.Post("/import", s.handleImportCSV)

		r.Get("/accounts", s.handleGetAccounts)
		r.Post("/accounts", s.handlePostAccount)
	})
	return r
}
