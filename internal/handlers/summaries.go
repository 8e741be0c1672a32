package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/cheatsheet-api/internal/auth"
	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
	"github.com/BerylCAtieno/cheatsheet-api/internal/services"
	"github.com/BerylCAtieno/cheatsheet-api/internal/utils"
)

const streamHeartbeat = 25 * time.Second

type SummaryHandler struct {
	service    services.SummaryService
	identities *auth.Resolver
	logger     *utils.Logger
}

func NewSummaryHandler(service services.SummaryService, identities *auth.Resolver, logger *utils.Logger) *SummaryHandler {
	return &SummaryHandler{
		service:    service,
		identities: identities,
		logger:     logger,
	}
}

type summaryList struct {
	Summaries []models.SummaryRecord `json:"summaries"`
}

// identity never mints; only an analysis creates an anonymous id.
func (h *SummaryHandler) identity(w http.ResponseWriter, r *http.Request) models.Identity {
	return h.identities.Resolve(r.Context(), auth.CredentialsFromRequest(w, r))
}

func (h *SummaryHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context(), h.identity(w, r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, summaryList{Summaries: records})
}

func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, err := h.service.Get(r.Context(), h.identity(w, r), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, record)
}

func (h *SummaryHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	format := r.URL.Query().Get("format")

	file, err := h.service.Export(r.Context(), h.identity(w, r), id, format)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondFile(w, h.logger, file)
}

func (h *SummaryHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.ExportHistory(r.Context(), h.identity(w, r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondFile(w, h.logger, file)
}

func (h *SummaryHandler) Document(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	file, err := h.service.SourceDocument(r.Context(), h.identity(w, r), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondFile(w, h.logger, file)
}

// Stream pushes summary.created events to the caller as server-sent events
// until the client goes away.
func (h *SummaryHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.service.Subscribe(ctx, h.identity(w, r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	rc := http.NewResponseController(w)
	// the server write timeout would otherwise end the stream
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		h.logger.Warn("Streaming not supported", "error", err)
		return
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev.Summary)
			if err != nil {
				h.logger.Error("Failed to encode event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\nid: %s\ndata: %s\n\n", ev.Type, ev.Summary.ID, payload)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
