package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dkachan/equiadmin/internal/common"
	"github.com/dkachan/equiadmin/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// accountResponse is the public view of an account. The credential hash and
// stable internal reference stay server-side.
type accountResponse struct {
	LoginID            string     `json:"login_id"`
	Rights             []string   `json:"rights"`
	Active             bool       `json:"active"`
	LockState          string     `json:"lock_state"`
	MustChangePassword bool       `json:"must_change_password"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		LoginID:            a.LoginID,
		Rights:             a.Rights,
		Active:             a.Active,
		LockState:          a.LockState,
		MustChangePassword: a.MustChangePassword,
		LastLoginAt:        a.LastLoginAt,
		CreatedAt:          a.CreatedAt,
	}
}

func (s *HTTPServer) handlePing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID  string `json:"login_id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	s.logger.Info(r.Context(), "Login request", "login_id", req.LoginID)

	token, account, err := s.accounts.Login(r.Context(), req.LoginID, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"account": toAccountResponse(account),
	})
}

func (s *HTTPServer) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID  string   `json:"login_id"`
		Password string   `json:"password"`
		Rights   []string `json:"rights"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	account, err := s.accounts.Create(r.Context(), req.LoginID, req.Password, req.Rights)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Account created", "login_id", account.LoginID)
	s.writeJSON(w, http.StatusCreated, map[string]any{"account": toAccountResponse(account)})
}

func (s *HTTPServer) handleChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	caller := accountFrom(r.Context())
	if err := s.accounts.ChangePassword(r.Context(), caller.ID, req.Password); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

func (s *HTTPServer) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	account, err := s.accounts.ResetPassword(r.Context(), chi.URLParam(r, "loginID"), req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Password reset", "login_id", account.LoginID)
	s.writeJSON(w, http.StatusOK, map[string]any{"account": toAccountResponse(account)})
}

func (s *HTTPServer) handleLockAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.ErrorValidation)
		return
	}

	account, err := s.accounts.SetLock(r.Context(), accountFrom(r.Context()), chi.URLParam(r, "loginID"), req.Action)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Lock state changed", "login_id", account.LoginID, "action", req.Action)
	s.writeJSON(w, http.StatusOK, map[string]any{"account": toAccountResponse(account)})
}

func (s *HTTPServer) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	loginID := chi.URLParam(r, "loginID")

	if err := s.accounts.Delete(r.Context(), loginID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Account deleted", "login_id", loginID)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"accounts": out})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the service error taxonomy onto HTTP statuses. Unexpected
// failures are logged and surfaced as opaque 500s.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		dup    *common.DuplicateError
		lock   *common.LockError
		cred   *common.CredentialsError
		rights *common.RightsError
	)

	switch {
	case errors.As(err, &dup):
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": dup.Error(), "field": dup.Field})
	case errors.Is(err, common.ErrorValidation):
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &cred):
		s.writeJSON(w, http.StatusUnauthorized, map[string]any{"error": cred.Error(), "remaining_attempts": cred.Remaining})
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case errors.As(err, &lock):
		s.writeJSON(w, http.StatusForbidden, map[string]any{"error": "account locked", "lock_type": lock.Type})
	case errors.As(err, &rights):
		s.writeJSON(w, http.StatusForbidden, map[string]any{"error": rights.Error()})
	case errors.Is(err, common.ErrorForbidden):
		s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, common.ErrorNotFound):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		s.logger.Error(r.Context(), "Request failed", "error", err.Error())
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
