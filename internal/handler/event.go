package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/venuedash/catalog/internal/catalog"
	"github.com/venuedash/catalog/internal/handler/dto"
	"github.com/venuedash/catalog/internal/model"
	"github.com/venuedash/catalog/internal/service"
)

// maxBodyBytes bounds mutation request bodies.
const maxBodyBytes = 1 << 20

// Catalog is the consumer surface of service.CatalogService.
type Catalog interface {
	ScopedEvents(ctx context.Context, scope model.Scope, q catalog.Query, mode service.ReadMode) service.View
	FilterOptions(ctx context.Context) service.OptionsView
	CreateEvent(ctx context.Context, input model.CreateEventInput) model.MutationResult
	UpdateEvent(ctx context.Context, id string, input model.UpdateEventInput) model.MutationResult
}

// EventHandler handles HTTP requests for the event catalog.
type EventHandler struct {
	svc    Catalog
	logger *slog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(svc Catalog, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		svc:    svc,
		logger: logger,
	}
}

// ScopedEvents handles GET /api/v1/scopes/{kind}/{id}/events.
// Query parameters select filters and sort; stale=ok answers from the
// cache immediately and refreshes in the background.
func (h *EventHandler) ScopedEvents(w http.ResponseWriter, r *http.Request) {
	scope, err := model.ParseScope(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SCOPE", err.Error())
		return
	}

	h.serveScope(w, r, scope)
}

// AdminEvents handles GET /api/v1/events, the admin scope.
func (h *EventHandler) AdminEvents(w http.ResponseWriter, r *http.Request) {
	h.serveScope(w, r, model.AdminScope())
}

func (h *EventHandler) serveScope(w http.ResponseWriter, r *http.Request, scope model.Scope) {
	values := r.URL.Query()
	mode := service.ReadBlocking
	if values.Get("stale") == "ok" {
		mode = service.ReadStaleWhileRevalidate
	}
	values.Del("stale")

	q, err := catalog.ParseQuery(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	view := h.svc.ScopedEvents(r.Context(), scope, q, mode)

	resp := dto.ScopedEventsResponse{
		Data:          view.Events,
		FilterOptions: view.FilterOptions,
		Counts:        dto.Counts{All: view.Counts.All, Filtered: view.Counts.Filtered},
		IsStale:       view.IsStale,
		IsLoading:     view.IsLoading,
		IsRefetching:  view.IsRefetching,
		FetchedAt:     dto.TimePtr(view.FetchedAt),
	}

	status := http.StatusOK
	if view.Err != nil {
		resp.Error = view.Err.Error()
		switch {
		case errors.Is(view.Err, model.ErrInvalidScope):
			status = http.StatusBadRequest
		case view.FetchedAt.IsZero():
			// Nothing cached to fall back on.
			h.logger.Warn("scope fetch failed", "scope", scope.String(), "error", view.Err)
			status = http.StatusBadGateway
		default:
			h.logger.Warn("serving stale scope after failed refresh", "scope", scope.String(), "error", view.Err)
		}
	}
	writeJSON(w, status, resp)
}

// FilterOptions handles GET /api/v1/filter-options.
func (h *EventHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	view := h.svc.FilterOptions(r.Context())

	resp := dto.FilterOptionsResponse{
		Data:      view.FilterOptions,
		IsStale:   view.IsStale,
		FetchedAt: dto.TimePtr(view.FetchedAt),
	}
	status := http.StatusOK
	if view.Err != nil {
		resp.Error = view.Err.Error()
		if view.FetchedAt.IsZero() {
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, resp)
}

// Create handles POST /api/v1/events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result := h.svc.CreateEvent(r.Context(), req.ToCreateEventInput())
	if !result.Success {
		h.writeMutationFailure(w, result)
		return
	}

	h.logger.Info("event_created", "event_id", result.ID, "venue_id", req.VenueID)
	writeJSON(w, http.StatusCreated, result)
}

// Update handles PATCH /api/v1/events/{id}.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Event ID is required")
		return
	}

	var req dto.UpdateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result := h.svc.UpdateEvent(r.Context(), id, req.ToUpdateEventInput())
	if !result.Success {
		h.writeMutationFailure(w, result)
		return
	}

	h.logger.Info("event_updated", "event_id", id)
	writeJSON(w, http.StatusOK, result)
}

// writeMutationFailure maps a failed mutation to an HTTP status. The body is
// the MutationResult itself.
func (h *EventHandler) writeMutationFailure(w http.ResponseWriter, result model.MutationResult) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(result.Cause, service.ErrInvalidEvent):
		status = http.StatusUnprocessableEntity
	case errors.Is(result.Cause, service.ErrEventNotFound):
		status = http.StatusNotFound
	case errors.Is(result.Cause, service.ErrVenueNotFound):
		status = http.StatusNotFound
	default:
		h.logger.Error("internal_error", "error", result.Cause)
		result.Error = "An internal error occurred"
	}
	writeJSON(w, status, result)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
