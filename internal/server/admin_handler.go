package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lchen-dev/safety-portal/internal/backup"
	"github.com/lchen-dev/safety-portal/internal/domain"
	"github.com/lchen-dev/safety-portal/internal/server/html"
)

// maxImportSize caps uploaded backup files at 8 MiB.
const maxImportSize = 8 << 20

// resolveScope picks the tenant scope a request acts on: the target query
// parameter when present, the token's own scope otherwise. The super-admin
// may target any tenant, or pass no target to see everything.
func (s *server) resolveScope(r *http.Request, token ScopeToken) (string, bool) {
	target := r.URL.Query().Get("target")
	if target == "" {
		target = r.FormValue("target")
	}
	if target == "" {
		if token.IsSuperAdmin() {
			return "", true
		}
		return token.Scope, true
	}
	return target, token.CanAccess(target)
}

func (s *server) fetchScopedApplications(r *http.Request, scope string) ([]domain.Application, error) {
	if scope == "" {
		return s.appRepository.GetAll(r.Context())
	}
	return s.appRepository.GetByOwner(r.Context(), scope)
}

func sortStateFromQuery(r *http.Request) domain.SortState {
	key := r.URL.Query().Get("sort")
	if key == "" {
		return domain.SortState{Key: "createdAt", Desc: true}
	}
	return domain.SortState{Key: key, Desc: r.URL.Query().Get("dir") == "desc"}
}

// columnLink builds the header link that toggles sorting on key.
func columnLink(scope string, state domain.SortState, key string) string {
	next := state.Toggle(key)
	dir := "asc"
	if next.Desc {
		dir = "desc"
	}
	return fmt.Sprintf("/admin/?target=%v&sort=%v&dir=%v", url.QueryEscape(scope), url.QueryEscape(key), dir)
}

func (s *server) handleGetAdmin(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())
	scope, allowed := s.resolveScope(r, token)
	if !allowed {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	errMsgs := make([]string, 0)
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		errMsgs = append(errMsgs, errMsg)
	}

	apps, err := s.fetchScopedApplications(r, scope)
	if err != nil {
		s.logger.Error("error getting applications", "error", err, "scope", scope)
		errMsgs = append(errMsgs, "Error getting applications")
	}

	state := sortStateFromQuery(r)
	sorted := domain.SortApplications(apps, state)

	sortLinks := make(map[string]string)
	for _, key := range []string{"applicant", "phone", "vendor_name", "workers", "createdAt", "ownerName"} {
		sortLinks[key] = columnLink(scope, state, key)
	}

	params := html.AdminParams{
		Title:        "申請資料管理後台",
		Errors:       errMsgs,
		Notice:       r.URL.Query().Get("notice"),
		Scope:        scope,
		IsSuperAdmin: token.IsSuperAdmin(),
		Applications: sorted,
		SortLinks:    sortLinks,
	}
	html.AdminPage(w, params)
}

func (s *server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())
	appId := chi.URLParam(r, "app-id")

	app, err := s.appRepository.GetByID(r.Context(), appId)
	if err != nil {
		s.logger.Error("error getting application", "error", err, "appId", appId)
		s.redirectToAdmin(w, r, token.Scope, "application not found")
		return
	}
	if !token.CanAccess(app.OwnerID) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if err := s.appRepository.Delete(r.Context(), appId); err != nil {
		s.logger.Error("failed to delete application", "error", err, "appId", appId)
		s.redirectToAdmin(w, r, app.OwnerID, "Failed to delete")
		return
	}
	s.redirectToAdmin(w, r, app.OwnerID, "")
}

func (s *server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())
	scope, allowed := s.resolveScope(r, token)
	if !allowed {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	apps, err := s.fetchScopedApplications(r, scope)
	if err != nil {
		s.logger.Error("error getting applications for export", "error", err, "scope", scope)
		s.redirectToAdmin(w, r, scope, "Failed to export")
		return
	}
	sorted := domain.SortApplications(apps, sortStateFromQuery(r))
	blob := backup.Export(sorted)

	filenameScope := scope
	if filenameScope == "" {
		filenameScope = "all"
	}
	csvExportsTotal.Inc()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%v"`, backup.Filename(filenameScope, time.Now())))
	w.Write(blob)
}

func (s *server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())
	scope, allowed := s.resolveScope(r, token)
	if !allowed {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if scope == "" {
		scope = token.Scope
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		s.redirectToAdmin(w, r, scope, "invalid upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.redirectToAdmin(w, r, scope, "missing backup file")
		return
	}
	defer file.Close()
	text, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		s.logger.Error("failed to read backup file", "error", err)
		s.redirectToAdmin(w, r, scope, "unreadable backup file")
		return
	}

	apps := backup.Parse(string(text))
	scopeName := scope
	if account, err := s.accountRepository.GetByName(r.Context(), scope); err == nil {
		scopeName = account.Name
	}

	outcome := s.importer.Run(r.Context(), apps, scope, scopeName)
	csvImportItemsTotal.WithLabelValues("success").Add(float64(outcome.Succeeded))
	csvImportItemsTotal.WithLabelValues("failure").Add(float64(outcome.Failed))

	http.Redirect(w, r, fmt.Sprintf("/admin/?target=%v&notice=%v", url.QueryEscape(scope), url.QueryEscape(outcome.String())), http.StatusSeeOther)
}

func (s *server) redirectToAdmin(w http.ResponseWriter, r *http.Request, scope, errMsg string) {
	http.Redirect(w, r, fmt.Sprintf("/admin/?target=%v&%v", url.QueryEscape(scope), errorQuery(errMsg)), http.StatusSeeOther)
}
