// Package api provides the HTTP API server for remote macro control.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/ivan-guerra/macro-recorder/internal/config"
	"github.com/ivan-guerra/macro-recorder/internal/library"
	"github.com/ivan-guerra/macro-recorder/internal/player"
	"github.com/ivan-guerra/macro-recorder/internal/protocol"
	"github.com/ivan-guerra/macro-recorder/internal/record"
	"github.com/ivan-guerra/macro-recorder/internal/recorder"
)

// Server exposes the Recorder/Player surface over HTTP for remote
// front-ends. It owns the session bookkeeping a local GUI would otherwise
// do: one session id per capture or playback run, and an unsaved-data flag
// so clients can warn before discarding a recording.
type Server struct {
	configMgr *config.Manager
	recorder  *recorder.Recorder
	player    *player.Player
	library   *library.Library
	token     string
	wsMgr     *WSManager

	mu        sync.Mutex
	sessionID string
	unsaved   bool
	records   int
}

// NewServer creates a new API server.
func NewServer(configMgr *config.Manager, rec *recorder.Recorder, pl *player.Player, lib *library.Library) *Server {
	s := &Server{
		configMgr: configMgr,
		recorder:  rec,
		player:    pl,
		library:   lib,
	}
	s.wsMgr = newWSManager(s)
	return s
}

// Start starts the API server on the specified port. It blocks until the
// listener fails.
func (s *Server) Start(port int) error {
	settings := s.configMgr.Get()
	s.token = settings.APIToken

	go s.wsMgr.start()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/record/start", s.handleRecordStart)
	mux.HandleFunc("/api/record/stop", s.handleRecordStop)
	mux.HandleFunc("/api/record/save", s.handleRecordSave)
	mux.HandleFunc("/api/play", s.handlePlay)
	mux.HandleFunc("/api/play/pause", s.handlePlayPause)
	mux.HandleFunc("/api/play/stop", s.handlePlayStop)
	mux.HandleFunc("/api/macros", s.handleMacros)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("API: Starting server on %s", addr)

	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		log.Printf("ERROR: API server failed to listen on %s: %v", addr, err)
		return err
	}

	server := &http.Server{
		Handler: s.authMiddleware(s.recoverMiddleware(mux)),
	}
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Printf("ERROR: API server stopped: %v", err)
		return err
	}
	return nil
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("API: panic recovered: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks the API token if one is configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("API: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		// Skip auth for health check
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if s.token != "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "Bearer "+s.token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// status assembles the current status payload.
func (s *Server) status() protocol.StatusPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return protocol.StatusPayload{
		Recording:   s.recorder.IsRecording(),
		Playing:     s.player.IsPlaying(),
		SessionID:   s.sessionID,
		Records:     s.records,
		UnsavedData: s.unsaved,
	}
}

// handleRecordStart handles POST /api/record/start?rate=<hz>
func (s *Server) handleRecordStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.player.IsPlaying() {
		writeError(w, http.StatusConflict, errors.New("cannot record while playback is in progress"))
		return
	}

	rate := s.configMgr.Get().RateHz
	if v := r.URL.Query().Get("rate"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid rate %q", v))
			return
		}
		rate = parsed
	}

	if err := s.recorder.Start(rate); err != nil {
		if errors.Is(err, recorder.ErrAlreadyRecording) {
			writeError(w, http.StatusConflict, err)
		} else {
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessionID = id
	s.records = 0
	s.mu.Unlock()

	log.Printf("API: Recording session %s started at %d Hz", id, rate)
	s.wsMgr.Broadcast(protocol.Message{
		Type:    protocol.TypeRecordingStarted,
		Payload: protocol.SessionPayload{SessionID: id, RateHz: rate},
	})
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
}

// handleRecordStop handles POST /api/record/stop
func (s *Server) handleRecordStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.recorder.Stop(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	records, err := s.recorder.Records()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.mu.Lock()
	id := s.sessionID
	s.records = len(records)
	s.unsaved = len(records) > 0
	s.mu.Unlock()

	log.Printf("API: Recording session %s stopped with %d records", id, len(records))
	s.wsMgr.Broadcast(protocol.Message{
		Type:    protocol.TypeRecordingStopped,
		Payload: protocol.SessionPayload{SessionID: id, Records: len(records)},
	})
	writeJSON(w, http.StatusOK, map[string]int{"records": len(records)})
}

// handleRecordSave handles POST /api/record/save?name=<macro>
func (s *Server) handleRecordSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing name parameter"))
		return
	}

	records, err := s.recorder.Records()
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err := s.library.Save(name, records); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	s.unsaved = false
	s.mu.Unlock()

	log.Printf("API: Saved %d records as macro %q", len(records), name)
	writeJSON(w, http.StatusOK, map[string]string{"saved": name})
}

// handlePlay handles POST /api/play?name=<macro>&speed=<multiplier>. With
// no name the current (unsaved) recording plays.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.recorder.IsRecording() {
		writeError(w, http.StatusConflict, errors.New("cannot playback while recording is in progress"))
		return
	}

	speed := s.configMgr.Get().SpeedMultiplier
	if v := r.URL.Query().Get("speed"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid speed %q", v))
			return
		}
		speed = parsed
	}

	name := r.URL.Query().Get("name")
	records, err := s.playbackRecords(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.player.Start(records, speed, nil); err != nil {
		if errors.Is(err, player.ErrAlreadyPlaying) {
			writeError(w, http.StatusConflict, err)
		} else {
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessionID = id
	s.mu.Unlock()

	// Report completion, with any playback failure, once the session ends.
	go func() {
		err := s.player.Wait()
		payload := protocol.SessionPayload{SessionID: id, Macro: name}
		if err != nil && !errors.Is(err, player.ErrNotPlaying) {
			payload.Error = err.Error()
			log.Printf("API: Playback session %s failed: %v", id, err)
		} else {
			log.Printf("API: Playback session %s finished", id)
		}
		s.wsMgr.Broadcast(protocol.Message{
			Type:    protocol.TypePlaybackFinished,
			Payload: payload,
		})
	}()

	log.Printf("API: Playback session %s started (macro=%q, speed=%v)", id, name, speed)
	s.wsMgr.Broadcast(protocol.Message{
		Type:    protocol.TypePlaybackStarted,
		Payload: protocol.SessionPayload{SessionID: id, Macro: name, Speed: speed},
	})
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
}

// playbackRecords resolves the sequence to play: a stored macro by name, or
// the current capture when no name is given.
func (s *Server) playbackRecords(name string) ([]record.Record, error) {
	if name != "" {
		return s.library.Load(name)
	}

	records, err := s.recorder.Records()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no data available; record a macro or name a stored one")
	}
	return records, nil
}

// handlePlayPause handles POST /api/play/pause
func (s *Server) handlePlayPause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.player.Pause(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handlePlayStop handles POST /api/play/stop
func (s *Server) handlePlayStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.player.Stop(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleMacros handles GET /api/macros
func (s *Server) handleMacros(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.library.List())
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.status())
}

// handleSettings handles GET and PUT /api/settings
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.configMgr.Get())
	case http.MethodPut:
		var settings config.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.configMgr.Set(settings); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.configMgr.Save(); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, s.configMgr.Get())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
