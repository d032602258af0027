// internal/interface/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/pkg/searching"
	"flightdeck-service/pkg/sorting"
	"flightdeck-service/pkg/utils"
)

func (s *Server) HandleFlights(w http.ResponseWriter, r *http.Request) {
	flights := s.browser.Visible()
	s.writeJSON(w, http.StatusOK, FlightsResponse{
		Flights: flights,
		Count:   len(flights),
	})
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, StateResponse{
		State: s.browser.State(),
		Time:  time.Now().UTC(),
	})
}

func (s *Server) HandleGetCriteria(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.browser.Criteria())
}

// HandleSetCriteria applies each field present in the body through the
// matching setter, so the recompute rules per field stay intact: the free
// text query debounces, everything else recomputes immediately.
func (s *Server) HandleSetCriteria(w http.ResponseWriter, r *http.Request) {
	var req CriteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}

	// Dates are validated with the same layouts the pipeline filters with,
	// so a live-tuned format is accepted here too
	dates := utils.NewDateParser(s.browser.Tuning().DateFormats)
	if req.DateFrom != nil {
		t, ok := dates.Parse(*req.DateFrom)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "Invalid date", "dateFrom does not match any accepted format")
			return
		}
		s.browser.SetDateFrom(&t)
	}
	if req.ClearDateFrom {
		s.browser.SetDateFrom(nil)
	}
	if req.DateTo != nil {
		t, ok := dates.Parse(*req.DateTo)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "Invalid date", "dateTo does not match any accepted format")
			return
		}
		s.browser.SetDateTo(&t)
	}
	if req.ClearDateTo {
		s.browser.SetDateTo(nil)
	}
	if req.SortKey != nil {
		key, err := entity.ParseSortKey(*req.SortKey)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid sort key", err.Error())
			return
		}
		s.browser.SetSortKey(key)
	}
	if req.SortOrder != nil {
		order, err := entity.ParseSortOrder(*req.SortOrder)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid sort order", err.Error())
			return
		}
		s.browser.SetSortOrder(order)
	}
	if req.SortAlgorithm != nil {
		algo, err := sorting.ParseAlgorithm(*req.SortAlgorithm)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid sort algorithm", err.Error())
			return
		}
		s.browser.SetSortAlgorithm(algo)
	}
	if req.SearchField != nil {
		field, err := entity.ParseSearchField(*req.SearchField)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid search field", err.Error())
			return
		}
		s.browser.SetSearchField(field)
	}
	if req.SearchAlgorithm != nil {
		algo, err := searching.ParseAlgorithm(*req.SearchAlgorithm)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid search algorithm", err.Error())
			return
		}
		s.browser.SetSearchAlgorithm(algo)
	}
	if req.MinPrice != nil {
		s.browser.SetMinPrice(req.MinPrice)
	}
	if req.ClearMinPrice {
		s.browser.SetMinPrice(nil)
	}
	if req.MaxPrice != nil {
		s.browser.SetMaxPrice(req.MaxPrice)
	}
	if req.ClearMaxPrice {
		s.browser.SetMaxPrice(nil)
	}
	if req.OriginFilter != nil {
		s.browser.SetOriginFilter(*req.OriginFilter)
	}
	if req.DestinationFilter != nil {
		s.browser.SetDestinationFilter(*req.DestinationFilter)
	}
	if req.Query != nil {
		s.browser.SetQuery(*req.Query)
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) HandleParseCriteria(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "Missing text", "Field 'text' is required")
		return
	}
	if err := s.browser.ApplyParsedCriteria(r.Context(), req.Text); err != nil {
		// Recoverable: prior criteria stay active, rollback stays available
		s.writeError(w, http.StatusBadGateway, "Criteria parse failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) HandleRestoreCriteria(w http.ResponseWriter, r *http.Request) {
	s.browser.RestorePreviousCriteria()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) HandleCriteriaHistory(w http.ResponseWriter, r *http.Request) {
	snapshots := s.browser.CriteriaHistory()
	s.writeJSON(w, http.StatusOK, HistoryResponse{
		Snapshots: snapshots,
		Count:     len(snapshots),
	})
}

func (s *Server) HandleLoad(w http.ResponseWriter, r *http.Request) {
	s.browser.Load()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) HandleLoadAll(w http.ResponseWriter, r *http.Request) {
	s.browser.LoadAll()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) HandleLoadMore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AnchorID int64 `json:"anchorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	s.browser.LoadMoreIfNeeded(entity.Flight{ID: req.AnchorID})
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query", "Field 'query' is required")
		return
	}
	flights, run, err := s.browser.ExecuteSearch(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SearchResponse{
		Flights: flights,
		Count:   len(flights),
		Run:     run,
	})
}

func (s *Server) HandleBenchmark(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query", "Field 'query' is required")
		return
	}
	runs, err := s.browser.RunAllSearchBenchmarks(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Benchmark failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, BenchmarkResponse{Runs: runs})
}

func (s *Server) HandleSortRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	runs, err := s.history.RecentSortRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to read run history", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SortRunsResponse{Runs: runs, Count: len(runs)})
}

func (s *Server) HandleSearchRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	runs, err := s.history.RecentSearchRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to read run history", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, SearchRunsResponse{Runs: runs, Count: len(runs)})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Healthy"))
}

func parseLimit(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
