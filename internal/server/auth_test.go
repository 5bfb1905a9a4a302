package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lchen-dev/safety-portal/internal/domain"
	"github.com/lchen-dev/safety-portal/internal/excel"
)

type fakeAccountRepo struct {
	accounts map[string]domain.Account
	deleted  []string
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	account.ID = "acc-" + account.Name
	f.accounts[account.Name] = *account
	return nil
}

func (f *fakeAccountRepo) GetByName(_ context.Context, name string) (domain.Account, error) {
	account, ok := f.accounts[name]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccountRepo) GetAll(context.Context) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAppRepo struct {
	apps []domain.Application
}

func (f *fakeAppRepo) Create(_ context.Context, app *domain.Application) error {
	app.ID = "app-1"
	f.apps = append(f.apps, *app)
	return nil
}

func (f *fakeAppRepo) GetByID(_ context.Context, id string) (domain.Application, error) {
	for _, app := range f.apps {
		if app.ID == id {
			return app, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (f *fakeAppRepo) GetByOwner(_ context.Context, scope string) ([]domain.Application, error) {
	apps := make([]domain.Application, 0)
	for _, app := range f.apps {
		if app.OwnerID == scope {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (f *fakeAppRepo) GetAll(context.Context) ([]domain.Application, error) {
	return append([]domain.Application{}, f.apps...), nil
}

func (f *fakeAppRepo) Delete(_ context.Context, id string) error {
	for i, app := range f.apps {
		if app.ID == id {
			f.apps = append(f.apps[:i], f.apps[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func newTestServer(t *testing.T, appRepo domain.ApplicationRepository, accountRepo domain.AccountRepository) *server {
	t.Helper()
	if appRepo == nil {
		appRepo = &fakeAppRepo{}
	}
	if accountRepo == nil {
		accountRepo = &fakeAccountRepo{accounts: map[string]domain.Account{}}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewServer(logger, "test-secret", appRepo, accountRepo, excel.NewFiller("testdata-missing.xlsx"))
	require.NoError(t, err)
	return s
}

func postLogin(t *testing.T, s *server, target, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("target", target)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	accounts := &fakeAccountRepo{accounts: map[string]domain.Account{
		"amam": {ID: "acc-amam", Name: "amam", Code: "1234", Role: "tenant"},
	}}
	s := newTestServer(t, nil, accounts)

	rec := postLogin(t, s, "amam", "1234")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/?target=amam", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, scopeTokenCookieKey, cookies[0].Name)

	token, err := s.parseScopeToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "amam", token.Scope)
	assert.Equal(t, "tenant", token.Role)
	assert.False(t, token.IsSuperAdmin())
}

func TestLoginWrongPassword(t *testing.T) {
	accounts := &fakeAccountRepo{accounts: map[string]domain.Account{
		"amam": {ID: "acc-amam", Name: "amam", Code: "1234"},
	}}
	s := newTestServer(t, nil, accounts)

	rec := postLogin(t, s, "amam", "0000")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=wrong password")
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginUnknownTenant(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := postLogin(t, s, "ghost", "1234")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=user not found")
}

func TestLoginBcryptCode(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	accounts := &fakeAccountRepo{accounts: map[string]domain.Account{
		"amam": {ID: "acc-amam", Name: "amam", Code: string(hash)},
	}}
	s := newTestServer(t, nil, accounts)

	rec := postLogin(t, s, "amam", "1234")
	assert.Equal(t, "/admin/?target=amam", rec.Header().Get("Location"))
}

func TestAdminRequiresScopeToken(t *testing.T) {
	s := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/?target=amam", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login?target=amam")
}

func TestAdminScopedView(t *testing.T) {
	apps := &fakeAppRepo{apps: []domain.Application{
		{ID: "app-1", Applicant: "王小明", OwnerID: "amam", CreatedAt: "2024-01-02T00:00:00Z"},
		{ID: "app-2", Applicant: "外人", OwnerID: "david", CreatedAt: "2024-01-03T00:00:00Z"},
	}}
	s := newTestServer(t, apps, nil)

	tokenStr, err := s.mintScopeToken(domain.Account{ID: "acc-amam", Name: "amam"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/?target=amam", nil)
	req.AddCookie(&http.Cookie{Name: scopeTokenCookieKey, Value: tokenStr})
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "王小明")
	assert.NotContains(t, rec.Body.String(), "外人")
}

func TestAdminForeignScopeForbidden(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tokenStr, err := s.mintScopeToken(domain.Account{ID: "acc-amam", Name: "amam"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/?target=david", nil)
	req.AddCookie(&http.Cookie{Name: scopeTokenCookieKey, Value: tokenStr})
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVerifyCode(t *testing.T) {
	assert.NoError(t, verifyCode("1234", "1234"))
	assert.ErrorIs(t, verifyCode("1234", "0000"), domain.ErrAuthMismatch)
}
