package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router usa http.ServeMux della standard library (nessuna dipendenza di
// routing per due endpoint)
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRoutes registra il dispatcher e la sonda di salute
func (r *Router) RegisterRoutes(dispatch *DispatchHandler) {
	r.mux.Handle("/", dispatch)

	r.mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
