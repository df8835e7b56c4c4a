package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/DarkArtek/elena-118/internal/models"
	"github.com/DarkArtek/elena-118/internal/service"

	"go.uber.org/zap"
)

// Analyzer pipeline di analisi clinica
type Analyzer interface {
	Analyze(ctx context.Context, obs models.PatientObservation) string
}

// DrugSearcher consultazione farmaci
type DrugSearcher interface {
	Search(ctx context.Context, query string) string
}

// ForceUpdater run manuale dell'aggiornamento anagrafica
type ForceUpdater interface {
	Run(ctx context.Context) ([]string, error)
}

// DispatchHandler endpoint unico del backend: il client invia un body JSON
// con discriminatore "type" e il resto del payload inline.
type DispatchHandler struct {
	analysis Analyzer
	drugs    DrugSearcher
	loader   ForceUpdater
	logger   *zap.Logger
}

// NewDispatchHandler crea il dispatcher
func NewDispatchHandler(analysis Analyzer, drugs DrugSearcher, loader ForceUpdater, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{
		analysis: analysis,
		drugs:    drugs,
		loader:   loader,
		logger:   logger,
	}
}

// dispatchRequest busta della richiesta: Type discrimina, gli altri campi
// sono inline nello stesso oggetto
type dispatchRequest struct {
	Type  string `json:"type"`
	Query string `json:"query"`
	models.PatientObservation
}

// ServeHTTP implementa http.Handler
func (h *DispatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// il frontend è servito da un'origine diversa
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Type {
	case "analysis":
		h.handleAnalysis(w, r, req)
	case "drug_search":
		h.handleDrugSearch(w, r, req)
	case "force_update":
		h.handleForceUpdate(w, r)
	default:
		writeError(w, http.StatusBadRequest, "unknown request type: "+req.Type)
	}
}

func (h *DispatchHandler) handleAnalysis(w http.ResponseWriter, r *http.Request, req dispatchRequest) {
	text := h.analysis.Analyze(r.Context(), req.PatientObservation)
	writeJSON(w, http.StatusOK, map[string]string{"analysis": text})
}

func (h *DispatchHandler) handleDrugSearch(w http.ResponseWriter, r *http.Request, req dispatchRequest) {
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required for drug_search")
		return
	}
	text := h.drugs.Search(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, map[string]string{"analysis": text})
}

func (h *DispatchHandler) handleForceUpdate(w http.ResponseWriter, r *http.Request) {
	logs, err := h.loader.Run(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"success": false,
				"error":   "aggiornamento già in corso",
			})
			return
		}
		h.logger.Error("Forced feed update failed",
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"logs":    logs,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"logs":    logs,
	})
}
