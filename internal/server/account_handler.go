package server

import (
	"errors"
	"net/http"
	"net/url"

	"golang.org/x/crypto/bcrypt"

	"github.com/lchen-dev/safety-portal/internal/domain"
	"github.com/lchen-dev/safety-portal/internal/server/html"
)

func (s *server) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())
	if !token.IsSuperAdmin() {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	errMsgs := make([]string, 0)
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		errMsgs = append(errMsgs, errMsg)
	}
	accounts, err := s.accountRepository.GetAll(r.Context())
	if err != nil {
		s.logger.Error("error getting accounts", "error", err)
		errMsgs = append(errMsgs, "Error getting accounts")
	}
	params := html.AccountsParams{
		Title:    "帳號管理",
		Errors:   errMsgs,
		Accounts: accounts,
	}
	html.AccountsPage(w, params)
}

func (s *server) handlePostAccount(w http.ResponseWriter, r *http.Request) {
	token := TokenFromContext(r.Context())
	if !token.IsSuperAdmin() {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	errMsg := ""
	if r.FormValue("delete") == "true" {
		errMsg = s.deleteAccount(r)
	} else {
		errMsg = s.createAccount(r)
	}
	http.Redirect(w, r, "/admin/accounts?"+errorQuery(url.QueryEscape(errMsg)), http.StatusSeeOther)
}

func (s *server) createAccount(r *http.Request) string {
	name := r.FormValue("name")
	code := r.FormValue("code")
	role := r.FormValue("role")
	if name == "" || code == "" {
		return "name and code are required"
	}
	_, err := s.accountRepository.GetByName(r.Context(), name)
	if err == nil {
		return "account already exists"
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error("error checking account name", "error", err, "name", name)
		return "failed to create"
	}

	codeHashBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("error hashing account code", "error", err)
		return "failed to create"
	}
	account := domain.Account{
		Name: name,
		Code: string(codeHashBytes),
		Role: role,
	}
	if err := s.accountRepository.Create(r.Context(), &account); err != nil {
		s.logger.Error("error creating account", "error", err, "name", name)
		return "failed to create"
	}
	return ""
}

func (s *server) deleteAccount(r *http.Request) string {
	name := r.FormValue("name")
	account, err := s.accountRepository.GetByName(r.Context(), name)
	if err != nil {
		s.logger.Error("error getting account", "error", err, "name", name)
		return "account not found"
	}
	if account.IsSuperAdmin() {
		return domain.ErrProtected.Error()
	}
	if err := s.accountRepository.Delete(r.Context(), account.ID); err != nil {
		s.logger.Error("error deleting account", "error", err, "name", name)
		return "failed to delete"
	}
	return ""
}
