package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func (s *Server) getVariants(w http.ResponseWriter, r *http.Request) {
	uprn, err := strconv.ParseInt(mux.Vars(r)["uprn"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid uprn")
		return
	}
	variants := s.store.lookupUPRN(uprn)
	if len(variants) == 0 {
		writeError(w, http.StatusNotFound, "uprn not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uprn":     uprn,
		"count":    len(variants),
		"variants": variants,
	})
}

func (s *Server) searchVariants(w http.ResponseWriter, r *http.Request) {
	postcode := r.URL.Query().Get("postcode")
	if postcode == "" {
		writeError(w, http.StatusBadRequest, "postcode query parameter required")
		return
	}
	variants := s.store.lookupPostcode(postcode)
	writeJSON(w, http.StatusOK, map[string]any{
		"postcode": postcode,
		"count":    len(variants),
		"variants": variants,
	})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.stats())
}

func (s *Server) getManifest(w http.ResponseWriter, r *http.Request) {
	if s.manifest == nil {
		writeError(w, http.StatusNotFound, "no manifest for loaded relation")
		return
	}
	writeJSON(w, http.StatusOK, s.manifest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
