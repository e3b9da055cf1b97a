package server

import (
	"net/http"
	"strconv"
	"strings"

	"innario/internal/api"
	"innario/internal/hymnal"
	"innario/internal/selection"
	"innario/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:  "ok",
		Catalog: s.index.Len(),
	})
}

// handleSelectionPreview draws a program straight from the catalog. No
// ward, no rotation window, nothing recorded.
func (s *Server) handleSelectionPreview(w http.ResponseWriter, r *http.Request, _ *store.User) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	festivity, err := hymnal.ParseFestivity(query.Get("festivity"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	selCtx := selection.Context{
		FirstSunday: boolParam(query.Get("first_sunday")),
		Festive:     boolParam(query.Get("festive")),
		Festivity:   festivity,
	}
	if err := selCtx.Validate(); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	hymns, err := s.engine.Select(selCtx)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.PreviewResponse{
		FirstSunday: selCtx.FirstSunday,
		Festive:     selCtx.Festive,
		Festivity:   selCtx.EffectiveFestivity().String(),
		HymnCount:   len(hymns),
		Hymns:       api.Positioned(hymns),
	})
}

// handleHymns answers the single-hymn lookup: all given criteria must
// match, and one hymn is drawn at random from the matches.
func (s *Server) handleHymns(w http.ResponseWriter, r *http.Request, _ *store.User) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	filter := hymnal.Filter{
		Category: query.Get("category"),
		Tag:      query.Get("tag"),
	}
	if raw := strings.TrimSpace(query.Get("number")); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "number must be an integer")
			return
		}
		filter.Number = number
	}
	pool := s.index.Match(filter)
	if len(pool) == 0 {
		s.writeError(w, http.StatusNotFound, "no hymn matches the given criteria")
		return
	}
	hymn, err := s.engine.PickOne(pool)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromHymn(hymn))
}

func (s *Server) handleHymnsSub(w http.ResponseWriter, r *http.Request, _ *store.User) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	switch strings.TrimPrefix(r.URL.Path, "/api/v1/hymns/") {
	case "categories":
		s.writeJSON(w, http.StatusOK, api.CategoriesResponse{Categories: s.index.Categories()})
	case "tags":
		s.writeJSON(w, http.StatusOK, api.TagsResponse{Tags: s.index.Tags()})
	case "stats":
		s.writeJSON(w, http.StatusOK, api.FromIndex(s.index))
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func boolParam(value string) bool {
	return value == "1" || strings.EqualFold(value, "true")
}
