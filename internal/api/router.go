package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"smartscheduler/internal/auth"
)

type Handlers struct {
	Booking *BookingHandler
	Host    *HostHandler
	Auth    *AuthHandler
}

func NewRouter(h Handlers, jwtSecret string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	// Public endpoints
	r.HandleFunc("/api/book/slots", h.Booking.GetSlots).Methods("GET")
	r.HandleFunc("/api/book/menus/{slug}", h.Booking.GetMenu).Methods("GET")
	r.HandleFunc("/api/book/request", h.Booking.CreateRequest).Methods("POST")
	r.HandleFunc("/api/auth/login", h.Auth.Login).Methods("POST")

	// Host endpoints (protected)
	host := r.PathPrefix("/api/host").Subrouter()
	host.Use(auth.HostAuthMiddleware(jwtSecret))
	host.HandleFunc("/requests", h.Host.ListRequests).Methods("GET")
	host.HandleFunc("/requests/{id}/approve", h.Host.ApproveRequest).Methods("POST")
	host.HandleFunc("/requests/{id}/reject", h.Host.RejectRequest).Methods("POST")
	host.HandleFunc("/schedule", h.Host.GetSchedule).Methods("GET")
	host.HandleFunc("/schedule", h.Host.PutSchedule).Methods("PUT")
	host.HandleFunc("/credentials", h.Host.PutCredentials).Methods("PUT")
	host.HandleFunc("/rules", h.Host.ListRules).Methods("GET")
	host.HandleFunc("/rules", h.Host.CreateRule).Methods("POST")
	host.HandleFunc("/calendar/events", h.Host.ListCalendarEvents).Methods("GET")

	return r
}
