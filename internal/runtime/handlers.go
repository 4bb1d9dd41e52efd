package runtime

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bloomlabs/bloom-core/internal/audio"
	"github.com/bloomlabs/bloom-core/internal/session"
)

// registerSessionAPI exposes the controller over HTTP for local clients:
// the same operations edge devices drive over the bus.
func registerSessionAPI(mux *http.ServeMux, controller *session.Controller, log *slog.Logger) {
	logger := log.With(slog.String("component", "session-api"))

	mux.HandleFunc("GET /session", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, controller.Snapshot())
	})

	mux.HandleFunc("POST /session/start", func(w http.ResponseWriter, r *http.Request) {
		id, err := controller.StartSession(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
	})

	mux.HandleFunc("POST /session/capture", func(w http.ResponseWriter, r *http.Request) {
		media, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
			return
		}
		mimeType := r.Header.Get("Content-Type")
		kind := r.URL.Query().Get("kind")
		if err := controller.CaptureComplete(r.Context(), media, mimeType, kind); err != nil {
			switch {
			case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrNotRecording):
				writeError(w, err)
			default:
				// The pipeline failed; the snapshot carries the only
				// message the user should see.
				logger.Warn("pipeline failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusOK, controller.Snapshot())
			}
			return
		}
		writeJSON(w, http.StatusOK, controller.Snapshot())
	})

	mux.HandleFunc("POST /session/reset", func(w http.ResponseWriter, r *http.Request) {
		if err := controller.Reset(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, controller.Snapshot())
	})

	mux.HandleFunc("POST /session/play", func(w http.ResponseWriter, _ *http.Request) {
		if err := controller.Play(); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, controller.Snapshot())
	})

	mux.HandleFunc("POST /session/stop", func(w http.ResponseWriter, _ *http.Request) {
		controller.StopPlayback()
		writeJSON(w, http.StatusOK, controller.Snapshot())
	})

	mux.HandleFunc("GET /session/scene", func(w http.ResponseWriter, r *http.Request) {
		elapsed := controller.Elapsed()
		if raw := r.URL.Query().Get("t"); raw != "" {
			ms, err := strconv.Atoi(raw)
			if err != nil || ms < 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "t must be a non-negative integer of milliseconds"})
				return
			}
			elapsed = time.Duration(ms) * time.Millisecond
		}
		scene, err := controller.Scene(elapsed)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scene)
	})

	mux.HandleFunc("GET /session/audio.wav", func(w http.ResponseWriter, _ *http.Request) {
		buf := controller.AudioBuffer()
		if buf == nil {
			writeError(w, session.ErrNoResult)
			return
		}
		data, err := audio.EncodeWAV(buf)
		if err != nil {
			logger.Warn("wav export failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNotRecording), errors.Is(err, session.ErrNoResult):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
