package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"fish-hunt/internal/game"
)

// maxEvents bounds /api/events?n=.
const maxEvents = 256

// inputRequest is the wire shape of a remote input edge, shared by
// POST /api/input and inbound websocket messages.
type inputRequest struct {
	Action string  `json:"action"`
	Key    string  `json:"key"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

var errMissingKey = errors.New("key is required for press and release")

// toEvent validates the request and converts it to an engine input edge.
func (req inputRequest) toEvent(source string) (game.InputEvent, error) {
	action, err := game.ParseInputAction(req.Action)
	if err != nil {
		return game.InputEvent{}, err
	}
	if action != game.ActionMove && req.Key == "" {
		return game.InputEvent{}, errMissingKey
	}
	return game.InputEvent{
		Action: action,
		Key:    game.Key(req.Key),
		X:      req.X,
		Y:      req.Y,
		Source: source,
	}, nil
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"engine":    h.engine.GetStats(),
		"eventLog":  h.engine.GetEventLogStats(),
		"rateLimit": h.limiter.GetStats(),
		"recording": false,
	}
	if h.frames != nil {
		stats["framesPresented"] = h.frames.Frames()
	}
	if h.recorder != nil {
		stats["recording"] = h.recorder.IsRecording()
		stats["recorder"] = h.recorder.GetStats()
	}
	if h.clients != nil {
		stats["wsClients"] = h.clients()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	n := 50
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	if n > maxEvents {
		n = maxEvents
	}
	writeJSON(w, h.engine.RecentEvents(n))
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.frames == nil {
		writeError(w, "Rendering disabled", http.StatusNotFound)
		return
	}
	if h.frames.Frames() == 0 {
		writeError(w, "No frame rendered yet", http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := h.frames.EncodePNG(&buf); err != nil {
		writeError(w, fmt.Sprintf("encode frame: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *routerHandlers) handlePostInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ev, err := req.toEvent("http:" + GetClientIP(r))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.engine.PushInput(ev) {
		writeError(w, "Input queue full", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]bool{"queued": true})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
