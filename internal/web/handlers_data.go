package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/sheetmerge/internal/core"
	"github.com/JonMunkholm/sheetmerge/internal/record"
)

// handleHealth reports liveness along with the storage backend and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"storage": s.service.StoreName(),
		"imports": s.service.LimiterStatus(),
	})
}

// handleData returns the stored record set. An empty store is [].
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	set, err := s.service.Records(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if set == nil {
		set = record.Set{}
	}
	writeJSON(w, http.StatusOK, set)
}

// handleListImports returns recent imports and previews, newest first.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	imports := s.service.History()
	if imports == nil {
		imports = []core.ImportResult{}
	}
	writeJSON(w, http.StatusOK, imports)
}

// handleGetImport returns one import by ID.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ImportByID(chi.URLParam(r, "importID"))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
