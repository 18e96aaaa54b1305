package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/repo"
	"github.com/openbooks/ledger/internal/state"
)

// mountCollection attaches plain CRUD routes for one document collection.
// Writes invalidate the collection's view cache when one is wired.
func mountCollection[T any, P repo.Doc[T]](r chi.Router, path string, s *Server, col *repo.Collection[T, P], cache *state.Cache[T]) {
	h := &collectionHandlers[T, P]{s: s, col: col, cache: cache}
	r.Route(path, func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.replace)
		r.Delete("/{id}", h.delete)
	})
}

type collectionHandlers[T any, P repo.Doc[T]] struct {
	s     *Server
	col   *repo.Collection[T, P]
	cache *state.Cache[T]
}

func (h *collectionHandlers[T, P]) invalidate(ns string) {
	if h.cache != nil {
		h.cache.Invalidate(ns)
	}
}

func (h *collectionHandlers[T, P]) list(w http.ResponseWriter, r *http.Request) {
	ns := namespace(r)
	var (
		items []T
		err   error
	)
	if h.cache != nil {
		items, err = h.cache.Get(r.Context(), ns)
	} else {
		items, err = h.col.List(r.Context(), ns)
	}
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, items)
}

func (h *collectionHandlers[T, P]) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	item, err := h.col.Get(r.Context(), namespace(r), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, item)
}

func (h *collectionHandlers[T, P]) create(w http.ResponseWriter, r *http.Request) {
	var item T
	if err := decodeJSON(r, P(&item)); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	ns := namespace(r)
	created, err := h.col.Create(r.Context(), ns, P(&item))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.invalidate(ns)
	toJSON(w, http.StatusCreated, created)
}

func (h *collectionHandlers[T, P]) replace(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var item T
	if err := decodeJSON(r, P(&item)); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	P(&item).SetDocID(id)
	ns := namespace(r)
	saved, err := h.col.Save(r.Context(), ns, P(&item))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.invalidate(ns)
	toJSON(w, http.StatusOK, saved)
}

func (h *collectionHandlers[T, P]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	ns := namespace(r)
	if err := h.col.Delete(r.Context(), ns, id); err != nil {
		writeDomainErr(w, err)
		return
	}
	h.invalidate(ns)
	w.WriteHeader(http.StatusNoContent)
}
