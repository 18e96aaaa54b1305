package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/ledger"
)

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(w, err.Error())
		return
	}
	ns := namespace(r)
	account := ledger.Account{
		Code:     req.Code,
		Name:     req.Name,
		Type:     ledger.AccountType(req.Type),
		SubType:  ledger.AccountSubType(req.SubType),
		Currency: req.Currency,
		Metadata: req.Metadata,
	}
	created, err := s.deps.Posting.CreateAccount(r.Context(), ns, &account)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.deps.Views.Accounts.Invalidate(ns)
	toJSON(w, http.StatusCreated, toAccountResponse(created))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	ns := namespace(r)
	var (
		accounts []ledger.Account
		err      error
	)
	if r.URL.Query().Get("active") == "true" {
		accounts, err = s.deps.Accounts.ListActive(r.Context(), ns)
	} else {
		accounts, err = s.deps.Views.Accounts.Get(r.Context(), ns)
	}
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	account, err := s.deps.Accounts.Get(r.Context(), namespace(r), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	var req updateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	ns := namespace(r)
	account, err := s.deps.Accounts.Get(r.Context(), ns, id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if req.Code != nil {
		account.Code = *req.Code
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.SubType != nil {
		account.SubType = ledger.AccountSubType(*req.SubType)
	}
	if req.Archived != nil {
		account.Archived = *req.Archived
	}
	if req.Metadata != nil {
		account.Metadata = req.Metadata
	}
	updated, err := s.deps.Posting.UpdateAccount(r.Context(), ns, &account, req.BalanceMinor)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.deps.Views.Accounts.Invalidate(ns)
	toJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	ns := namespace(r)
	archived, err := s.deps.Posting.DeleteOrArchiveAccount(r.Context(), ns, id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.deps.Views.Accounts.Invalidate(ns)
	toJSON(w, http.StatusOK, deleteAccountResponse{Archived: archived, Deleted: !archived})
}

func (s *Server) seedAccounts(w http.ResponseWriter, r *http.Request) {
	var req seedAccountsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(w, err.Error())
		return
	}
	ns := namespace(r)
	accounts, err := s.deps.Posting.SeedChartOfAccounts(r.Context(), ns, req.Currency)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.deps.Views.Accounts.Invalidate(ns)
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusCreated, out)
}
