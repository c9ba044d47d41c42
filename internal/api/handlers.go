package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/traderview/journal-backend/internal/importer"
	"github.com/traderview/journal-backend/internal/store"
	"github.com/traderview/journal-backend/pkg/types"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// filteredStatsRequest is the body of POST /analytics/stats/filtered.
type filteredStatsRequest struct {
	AccountID int64 `json:"accountId"`
	types.StatsFilter
}

// createAccountRequest is the body of POST /accounts.
type createAccountRequest struct {
	Name   string `json:"name"`
	Broker string `json:"broker,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "account name is required")
		return
	}

	account := &types.TradingAccount{Name: req.Name, Broker: req.Broker}
	if _, err := s.store.CreateAccount(r.Context(), account); err != nil {
		s.logger.Error("Failed to create account", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r)
	if !ok {
		return
	}

	trades, err := s.store.ListTrades(r.Context(), accountID)
	if err != nil {
		s.logger.Error("Failed to list trades", zap.Int64("accountId", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accountId": accountID,
		"trades":    trades,
		"count":     len(trades),
	})
}

func (s *Server) handleDeleteTrades(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteTrades(r.Context(), accountID)
	if err != nil {
		s.logger.Error("Failed to delete trades", zap.Int64("accountId", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete trades")
		return
	}

	s.hub.BroadcastJournalUpdate(accountID, map[string]interface{}{
		"accountId":     accountID,
		"deletedTrades": deleted,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accountId": accountID,
		"deleted":   deleted,
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	// The importer resolves the account itself, so only the path
	// variable needs validating here.
	accountID, ok := accountIDVar(w, r)
	if !ok {
		return
	}

	var result *importer.Result
	var err error

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()
		result, err = s.importer.ImportCSV(r.Context(), accountID, file)
	} else {
		var records []importer.Record
		if derr := json.NewDecoder(r.Body).Decode(&records); derr != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		result, err = s.importer.ImportRecords(r.Context(), accountID, records)
	}

	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "trading account not found")
			return
		}
		s.logger.Error("Import failed", zap.Int64("accountId", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	s.hub.BroadcastJournalUpdate(accountID, map[string]interface{}{
		"accountId":      accountID,
		"importedTrades": result.ImportedTrades,
	})

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTradeStats(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r)
	if !ok {
		return
	}
	filter, err := parseFilterQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := s.analytics.GetTradeStats(r.Context(), accountID, filter)
	if err != nil {
		s.logger.Error("Failed to compute trade stats", zap.Int64("accountId", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute trade stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleFilteredStats(w http.ResponseWriter, r *http.Request) {
	var req filteredStatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AccountID == 0 {
		writeError(w, http.StatusBadRequest, "accountId is required")
		return
	}
	if !s.accountExists(w, r, req.AccountID) {
		return
	}

	stats, err := s.analytics.GetTradeStats(r.Context(), req.AccountID, &req.StatsFilter)
	if err != nil {
		s.logger.Error("Failed to compute trade stats", zap.Int64("accountId", req.AccountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute trade stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleWinLossDays(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r)
	if !ok {
		return
	}
	filter, err := parseFilterQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := s.analytics.GetWinLossDays(r.Context(), accountID, filter)
	if err != nil {
		s.logger.Error("Failed to compute win/loss days", zap.Int64("accountId", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute win/loss days")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleDrawdown(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r)
	if !ok {
		return
	}
	filter, err := parseFilterQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := s.analytics.GetDrawdownAnalysis(r.Context(), accountID, filter)
	if err != nil {
		s.logger.Error("Failed to compute drawdown", zap.Int64("accountId", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute drawdown")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleIntraday(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r)
	if !ok {
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	analysis, err := s.analytics.GetIntradayAnalysis(r.Context(), accountID, date)
	if err != nil {
		s.logger.Error("Failed to compute intraday analysis", zap.Int64("accountId", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute intraday analysis")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r)
	if !ok {
		return
	}
	start, end, err := parsePeriodQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.analytics.GetDashboardSummary(r.Context(), accountID, start, end)
	if err != nil {
		s.logger.Error("Failed to compute summary", zap.Int64("accountId", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSymbolPerformance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := s.requireAccount(w, r)
	if !ok {
		return
	}
	start, end, err := parsePeriodQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	performance, err := s.analytics.GetSymbolPerformance(r.Context(), accountID, start, end)
	if err != nil {
		s.logger.Error("Failed to compute symbol performance", zap.Int64("accountId", accountID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute symbol performance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accountId": accountID,
		"symbols":   performance,
	})
}

// accountIDVar extracts and validates the accountId path variable.
func accountIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["accountId"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return 0, false
	}
	return id, true
}

// requireAccount extracts the accountId path variable and verifies the
// account exists, answering 404 for unknown accounts.
func (s *Server) requireAccount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := accountIDVar(w, r)
	if !ok {
		return 0, false
	}
	if !s.accountExists(w, r, id) {
		return 0, false
	}
	return id, true
}

func (s *Server) accountExists(w http.ResponseWriter, r *http.Request, id int64) bool {
	if _, err := s.store.GetAccount(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "trading account not found")
			return false
		}
		s.logger.Error("Failed to resolve account", zap.Int64("accountId", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to resolve account")
		return false
	}
	return true
}

// parseFilterQuery builds a StatsFilter from query parameters. The end
// date is advanced one day so the requested date covers its whole day.
func parseFilterQuery(r *http.Request) (*types.StatsFilter, error) {
	q := r.URL.Query()
	filter := &types.StatsFilter{}

	if v := q.Get("symbols"); v != "" {
		for _, symbol := range strings.Split(v, ",") {
			if symbol = strings.TrimSpace(symbol); symbol != "" {
				filter.Symbols = append(filter.Symbols, strings.ToUpper(symbol))
			}
		}
	}

	if v := q.Get("startDate"); v != "" {
		date, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, errInvalidParam("startDate")
		}
		filter.StartDate = &date
	}
	if v := q.Get("endDate"); v != "" {
		date, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, errInvalidParam("endDate")
		}
		end := date.AddDate(0, 0, 1)
		filter.EndDate = &end
	}

	for param, target := range map[string]**decimal.Decimal{
		"minPnl":      &filter.MinPnL,
		"maxPnl":      &filter.MaxPnL,
		"minQuantity": &filter.MinQuantity,
		"maxQuantity": &filter.MaxQuantity,
	} {
		if v := q.Get(param); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, errInvalidParam(param)
			}
			*target = &d
		}
	}

	return filter, nil
}

// parsePeriodQuery reads startDate/endDate, defaulting to the last month.
func parsePeriodQuery(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	end := time.Now()
	start := end.AddDate(0, -1, 0)

	if v := q.Get("startDate"); v != "" {
		date, err := time.Parse(dateLayout, v)
		if err != nil {
			return start, end, errInvalidParam("startDate")
		}
		start = date
	}
	if v := q.Get("endDate"); v != "" {
		date, err := time.Parse(dateLayout, v)
		if err != nil {
			return start, end, errInvalidParam("endDate")
		}
		end = date.AddDate(0, 0, 1)
	}

	return start, end, nil
}

type paramError string

func (e paramError) Error() string { return "invalid " + string(e) + " parameter" }

func errInvalidParam(name string) error { return paramError(name) }

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
