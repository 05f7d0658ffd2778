package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"fieldservice-backend/internal/security"
)

type RouterConfig struct {
	API           *API
	Notifications http.Handler
	Metrics       http.Handler
	Tokens        security.TokenManager
}

// NewRouter registers every route by name. Route names double as keys into
// config.EndpointSecurityConfig.
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware, AuthMiddleware(cfg.Tokens))

	a := cfg.API
	router.HandleFunc("/health", a.Health).Methods("GET").Name("health")
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics).Methods("GET").Name("metrics")
	}
	if cfg.Notifications != nil {
		router.Handle("/ws/notifications/", cfg.Notifications).Methods("GET").Name("notifications")
	}

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard/stats/", a.DashboardStats).Methods("GET").Name("dashboard_stats")

	api.HandleFunc("/devices/", a.ListDevices).Methods("GET").Name("devices_list")
	api.HandleFunc("/devices/", a.CreateDevice).Methods("POST").Name("devices_create")
	api.HandleFunc("/devices/{serial}/", a.GetDevice).Methods("GET").Name("device_get")
	api.HandleFunc("/devices/{serial}/maintenance/", a.SetDeviceMaintenance).Methods("POST").Name("device_maintenance")

	api.HandleFunc("/jobs/", a.ListJobs).Methods("GET").Name("jobs_list")
	api.HandleFunc("/jobs/", a.CreateJob).Methods("POST").Name("jobs_create")
	api.HandleFunc("/jobs/{id:[0-9]+}/", a.GetJob).Methods("GET").Name("job_get")
	api.HandleFunc("/jobs/{id:[0-9]+}/claim/", a.ClaimJob).Methods("POST").Name("job_claim")
	api.HandleFunc("/jobs/{id:[0-9]+}/complete/", a.CompleteJob).Methods("POST").Name("job_complete")
	api.HandleFunc("/jobs/{id:[0-9]+}/reports/", a.ListReports).Methods("GET").Name("job_reports")

	api.HandleFunc("/reports/", a.ListReports).Methods("GET").Name("reports_list")

	api.HandleFunc("/rentals/", a.ListRentals).Methods("GET").Name("rentals_list")
	api.HandleFunc("/rentals/", a.StartRental).Methods("POST").Name("rentals_create")
	api.HandleFunc("/rentals/{id:[0-9]+}/", a.GetRental).Methods("GET").Name("rental_get")
	api.HandleFunc("/rentals/{id:[0-9]+}/return/", a.ReturnRental).Methods("POST").Name("rental_return")

	return router
}
