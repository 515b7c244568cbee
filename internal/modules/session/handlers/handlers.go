// Package handlers exposes simulation sessions over HTTP and WebSocket.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/aristath/folio/internal/modules/session"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeWait = 10 * time.Second

// Message types pushed to WebSocket clients
const (
	MessageSession  = "session"
	MessageSnapshot = "snapshot"
	MessageError    = "error"
)

// Message is one server-to-client WebSocket frame
type Message struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	Snapshot  *session.Snapshot `json:"snapshot,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Handler handles session requests
type Handler struct {
	manager        *session.Manager
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new session handler. originPatterns are passed to
// the WebSocket handshake; "*" accepts any origin.
func NewHandler(manager *session.Manager, originPatterns []string, log zerolog.Logger) *Handler {
	return &Handler{
		manager:        manager,
		originPatterns: originPatterns,
		log:            log.With().Str("handler", "session").Logger(),
	}
}

// RegisterRoutes registers session routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Get("/ws", h.HandleWebSocket)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Post("/{id}/changes", h.HandleApply)
		r.Delete("/{id}", h.HandleDelete)
	})
}

// HandleCreate handles POST /api/session
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ctrl := h.manager.Create()

	snap, err := ctrl.Refresh(r.Context())
	if err != nil {
		h.log.Error().Err(err).Str("session_id", id).Msg("Failed to compute initial snapshot")
		http.Error(w, "Failed to compute snapshot", http.StatusInternalServerError)
		return
	}

	h.writeSnapshot(w, http.StatusCreated, id, snap)
}

// HandleGet handles GET /api/session/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctrl, err := h.manager.Get(id)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	h.writeSnapshot(w, http.StatusOK, id, ctrl.Last())
}

// HandleApply handles POST /api/session/{id}/changes
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctrl, err := h.manager.Get(id)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	var change session.Change
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snap, err := ctrl.Apply(r.Context(), change)
	switch {
	case err == nil:
		h.writeSnapshot(w, http.StatusOK, id, snap)
	case errors.Is(err, session.ErrPending), errors.Is(err, session.ErrSuperseded):
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "Price fetch did not finish", http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

// HandleDelete handles DELETE /api/session/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.manager.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleWebSocket handles GET /api/session/ws[?id=...]. The client sends
// Change objects; the server answers with the snapshots they produce.
// Snapshots older than one already sent are not pushed.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		id, _ = h.manager.Create()
	}
	ctrl, err := h.manager.Acquire(id)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	defer h.manager.Release(id)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	log := h.log.With().Str("session_id", id).Logger()
	out := &pusher{conn: conn, log: log}

	if err := out.send(ctx, Message{Type: MessageSession, SessionID: id}); err != nil {
		return
	}

	var wg sync.WaitGroup
	run := func(change session.Change) {
		defer wg.Done()
		snap, err := ctrl.Apply(ctx, change)
		switch {
		case err == nil:
			out.snapshot(ctx, snap)
		case errors.Is(err, session.ErrPending), errors.Is(err, session.ErrSuperseded):
		case ctx.Err() != nil:
		default:
			_ = out.send(ctx, Message{Type: MessageError, Error: err.Error()})
		}
	}

	wg.Add(1)
	go run(session.Change{})

	for {
		var change session.Change
		if err := wsjson.Read(ctx, conn, &change); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				log.Debug().Msg("WebSocket closed by client")
			} else if ctx.Err() == nil {
				log.Debug().Err(err).Msg("WebSocket read failed")
			}
			break
		}
		h.manager.Touch(id)

		wg.Add(1)
		go run(change)
	}

	cancel()
	wg.Wait()
	conn.Close(websocket.StatusNormalClosure, "")
}

// pusher serializes frames and drops snapshots older than the newest sent
type pusher struct {
	conn *websocket.Conn
	log  zerolog.Logger

	mu      sync.Mutex
	version uint64
}

func (p *pusher) snapshot(ctx context.Context, snap session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if snap.Version < p.version {
		return
	}
	p.version = snap.Version
	_ = p.writeLocked(ctx, Message{Type: MessageSnapshot, Snapshot: &snap})
}

func (p *pusher) send(ctx context.Context, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writeLocked(ctx, msg)
}

func (p *pusher) writeLocked(ctx context.Context, msg Message) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()

	if err := wsjson.Write(writeCtx, p.conn, msg); err != nil {
		if ctx.Err() == nil {
			p.log.Debug().Err(err).Str("type", msg.Type).Msg("WebSocket write failed")
		}
		return err
	}
	return nil
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, status int, id string, snap session.Snapshot) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": map[string]interface{}{
			"session_id": id,
			"snapshot":   snap,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
