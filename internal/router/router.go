package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/blood-report-api/internal/handlers"
	"github.com/BerylCAtieno/blood-report-api/internal/middleware"
	"github.com/BerylCAtieno/blood-report-api/internal/services"
	"github.com/BerylCAtieno/blood-report-api/internal/utils"
)

type Options struct {
	AllowedOrigin string
	MaxFileSize   int64
	// AuditEnabled registers GET /api/audit.
	AuditEnabled bool
}

func NewRouter(reportService services.ReportService, opts Options, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	reportHandler := handlers.NewReportHandler(reportService, opts.MaxFileSize, logger)
	healthHandler := handlers.NewHealthHandler(logger)

	r.HandleFunc("/", healthHandler.Home).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/analyze-report", reportHandler.AnalyzeReport).Methods(http.MethodPost)
	if opts.AuditEnabled {
		api.HandleFunc("/audit", reportHandler.ListAudit).Methods(http.MethodGet)
	}

	// mux only runs r.Use middleware on matched routes, so the middleware
	// chain wraps the router itself. Recovery is outermost.
	var handler http.Handler = r
	handler = middleware.CORS(opts.AllowedOrigin)(handler)
	handler = middleware.Logger(logger)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.Recovery(logger)(handler)
	return handler
}
