package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Pilsner12/Dental-Lite-sub000/internal/appointment"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/availability"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/inventory"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/kv"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/officehours"
	"github.com/Pilsner12/Dental-Lite-sub000/internal/patient"
)

type RouterConfig struct {
	Appointments *appointment.Store
	OfficeHours  *officehours.Service
	Availability *availability.Facade
	Inventory    *inventory.Store
	Patients     *patient.Directory
	Storage      kv.Store
	Logger       zerolog.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.Storage, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Appointment endpoints
	r.Post("/appointments", createAppointmentHandler(cfg.Appointments, cfg.Patients))
	r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
	r.Get("/appointments/conflict", conflictCheckHandler(cfg.Appointments))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
	r.Patch("/appointments/{id}", updateAppointmentHandler(cfg.Appointments))
	r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Appointments))

	// Availability facade
	r.Get("/availability", availabilityHandler(cfg.Availability))

	// Office hours
	r.Get("/office-hours", getOfficeHoursHandler(cfg.OfficeHours))
	r.Get("/office-hours/slot-status", slotStatusHandler(cfg.OfficeHours))
	r.Post("/office-hours/reset", resetOfficeHoursHandler(cfg.OfficeHours))
	r.Put("/office-hours/{day}", setDayOpenHandler(cfg.OfficeHours))
	r.Post("/office-hours/{day}/blocks", addBlockHandler(cfg.OfficeHours))
	r.Post("/office-hours/{day}/blocks/validate", validateBlockHandler(cfg.OfficeHours))
	r.Patch("/office-hours/{day}/blocks/{blockID}", updateBlockHandler(cfg.OfficeHours))
	r.Delete("/office-hours/{day}/blocks/{blockID}", removeBlockHandler(cfg.OfficeHours))

	// History ledger
	r.Get("/history", listHistoryHandler(cfg.Appointments))
	r.Post("/history/{id}/undo", undoHistoryHandler(cfg.Appointments))
	r.Delete("/history", clearHistoryHandler(cfg.Appointments))

	// Inventory
	r.Get("/inventory", listInventoryHandler(cfg.Inventory))
	r.Post("/inventory", addInventoryHandler(cfg.Inventory))
	r.Patch("/inventory/{id}", updateInventoryHandler(cfg.Inventory))
	r.Delete("/inventory/{id}", deleteInventoryHandler(cfg.Inventory))
	r.Get("/inventory/history", inventoryHistoryHandler(cfg.Inventory))
	r.Post("/inventory/history/{id}/undo", undoInventoryHandler(cfg.Inventory))

	// Patient directory (read-only)
	r.Get("/patients", listPatientsHandler(cfg.Patients))
	r.Get("/patients/{id}", getPatientHandler(cfg.Patients))

	return r
}
