package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lchen-dev/safety-portal/internal/backup"
	"github.com/lchen-dev/safety-portal/internal/domain"
	"github.com/lchen-dev/safety-portal/internal/server/html"
)

// formWorkerRows is how many worker row groups the submission form renders.
const formWorkerRows = 10

// tenantDisplayName resolves the display name shown on the form. Unknown
// tenants fall back to the raw scope id, as the original did.
func (s *server) tenantDisplayName(r *http.Request, tenant string) string {
	account, err := s.accountRepository.GetByName(r.Context(), tenant)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("error getting account for form", "error", err, "tenant", tenant)
		}
		return tenant
	}
	return account.Name
}

func (s *server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	params := html.FormParams{
		Title:      "供應商工安認證申請表",
		Tenant:     tenant,
		TenantName: s.tenantDisplayName(r, tenant),
		WorkerRows: make([]int, formWorkerRows),
		Error:      r.URL.Query().Get("error"),
		Notice:     r.URL.Query().Get("notice"),
	}
	html.FormPage(w, params)
}

func (s *server) handlePostForm(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/form/"+tenant+"?error=bad request", http.StatusSeeOther)
		return
	}

	app := domain.Application{
		Applicant:     strings.TrimSpace(r.FormValue("applicant")),
		Phone:         strings.TrimSpace(r.FormValue("phone")),
		VendorName:    strings.TrimSpace(r.FormValue("vendor_name")),
		VendorRep:     strings.TrimSpace(r.FormValue("vendor_rep")),
		ContactPerson: strings.TrimSpace(r.FormValue("contact_person")),
		CreatedAt:     time.Now().Format(time.RFC3339),
		OwnerID:       tenant,
		OwnerName:     s.tenantDisplayName(r, tenant),
		Status:        "pending",
		Workers:       []domain.Worker{},
	}
	if app.Applicant == "" {
		http.Redirect(w, r, "/form/"+tenant+"?error=applicant is required", http.StatusSeeOther)
		return
	}

	names := r.Form["worker_name"]
	ids := r.Form["worker_id_number"]
	bloods := r.Form["worker_blood_type"]
	birthdays := r.Form["worker_birthday"]
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		app.Workers = append(app.Workers, domain.Worker{
			Name:      name,
			IDNumber:  strings.TrimSpace(formAt(ids, i)),
			BloodType: strings.TrimSpace(formAt(bloods, i)),
			Birthday:  backup.NormalizeBirthday(formAt(birthdays, i)),
		})
	}

	if err := s.appRepository.Create(r.Context(), &app); err != nil {
		s.logger.Error("failed to store application", "error", err, "tenant", tenant)
		http.Redirect(w, r, "/form/"+tenant+"?error=failed to submit, please retry", http.StatusSeeOther)
		return
	}
	submissionsTotal.Inc()
	http.Redirect(w, r, "/form/"+tenant+"?notice=application submitted", http.StatusSeeOther)
}

func formAt(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return values[idx]
}
