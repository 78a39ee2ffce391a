package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/voicekit/focusd/internal/activity"
	"github.com/voicekit/focusd/internal/config"
	"github.com/voicekit/focusd/internal/focus"
)

// Modality names accepted by the API.
const (
	ModalityAudio  = "audio"
	ModalityVisual = "visual"
)

// Server is the HTTP control plane for the device's focus managers.
// Remote callers hold channels through per-(interface, channel) session
// observers that the server keeps on their behalf.
type Server struct {
	cfg     *config.Config
	port    string
	audio   *focus.Manager
	visual  *focus.Manager
	tracker *activity.Tracker

	sessionLock sync.RWMutex
	sessions    map[string]*session
}

// session stands in for a remote channel owner. It is the observer
// identity the engine uses to authorize release. A session that sees its
// channel go to NONE has lost it for good and removes itself from the
// server's session table.
type session struct {
	srv *Server
	key string

	mu        sync.Mutex
	lastState focus.State
}

func (s *session) OnFocusChanged(state focus.State) {
	s.mu.Lock()
	s.lastState = state
	s.mu.Unlock()
	if state == focus.StateNone {
		s.srv.dropSession(s.key, s)
	}
}

func (s *session) state() focus.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastState
}

// New builds the server and its two focus managers from the config file.
func New(configFile string, port string) (*Server, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if port == "" {
		port = cfg.Server.Port
	}

	tracker := activity.NewTracker(cfg.Activity.History)
	return &Server{
		cfg:      cfg,
		port:     port,
		audio:    focus.NewManager(cfg.Channels.Audio, tracker),
		visual:   focus.NewManager(cfg.Channels.Visual, tracker),
		tracker:  tracker,
		sessions: make(map[string]*session),
	}, nil
}

// Routes returns the API mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/activity", s.handleActivity)
	mux.HandleFunc("/api/acquire", s.handleAcquire)
	mux.HandleFunc("/api/release", s.handleRelease)
	mux.HandleFunc("/api/stop", s.handleStop)
	mux.HandleFunc("/api/stop-all", s.handleStopAll)
	return mux
}

// Start runs the server. It blocks until the listener fails.
func (s *Server) Start() error {
	localIP := getLocalIP()
	slog.Info("Starting focusd control server",
		"port", s.port,
		"local_url", fmt.Sprintf("http://%s:%s", localIP, s.port),
		"localhost_url", fmt.Sprintf("http://localhost:%s", s.port))

	return http.ListenAndServe(":"+s.port, s.Routes())
}

// Shutdown stops both arbitration workers after draining queued work.
func (s *Server) Shutdown() {
	s.audio.Shutdown()
	s.visual.Shutdown()
}

func (s *Server) manager(modality string) *focus.Manager {
	switch modality {
	case ModalityVisual:
		return s.visual
	case ModalityAudio, "":
		return s.audio
	default:
		return nil
	}
}

// focusRequest is the body of acquire/release calls.
type focusRequest struct {
	Modality  string `json:"modality,omitempty"`
	Channel   string `json:"channel"`
	Interface string `json:"interface"`
}

// StatusResponse is the JSON shape of /api/status. Sessions maps
// modality/channel/interface to the focus each remote holder last saw.
type StatusResponse struct {
	Audio    []focus.ChannelState   `json:"audio"`
	Visual   []focus.ChannelState   `json:"visual"`
	Sessions map[string]focus.State `json:"sessions,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.sessionLock.RLock()
	sessions := make(map[string]focus.State, len(s.sessions))
	for key, sess := range s.sessions {
		sessions[key] = sess.state()
	}
	s.sessionLock.RUnlock()

	s.sendJSON(w, http.StatusOK, StatusResponse{
		Audio:    s.audio.ChannelStates(),
		Visual:   s.visual.ChannelStates(),
		Sessions: sessions,
	})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	records := s.tracker.Recent()
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) handleAcquire(w http.ResponseWriter, r *http.Request) {
	req, mgr, ok := s.parseFocusRequest(w, r)
	if !ok {
		return
	}

	// Always a fresh session: an earlier one under the same key may still
	// get its losing-the-channel notification, and its self-removal must
	// not take the new owner's entry with it.
	key := sessionKey(req.Modality, req.Channel, req.Interface)
	sess := &session{srv: s, key: key}
	s.sessionLock.Lock()
	s.sessions[key] = sess
	s.sessionLock.Unlock()

	accepted := mgr.AcquireChannel(req.Channel, sess, req.Interface)
	if !accepted {
		s.dropSession(key, sess)
		s.sendErrorResponse(w, http.StatusNotFound, fmt.Sprintf("Channel not found: %s", req.Channel))
		return
	}
	slog.Debug("Acquire accepted", "channel", req.Channel, "interface", req.Interface, "modality", req.Modality)
	s.sendJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"channel": req.Channel,
	})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	req, mgr, ok := s.parseFocusRequest(w, r)
	if !ok {
		return
	}

	key := sessionKey(req.Modality, req.Channel, req.Interface)
	s.sessionLock.RLock()
	sess, exists := s.sessions[key]
	s.sessionLock.RUnlock()
	if !exists {
		s.sendErrorResponse(w, http.StatusNotFound,
			fmt.Sprintf("No session holds %s for interface %s", req.Channel, req.Interface))
		return
	}

	released := <-mgr.ReleaseChannel(req.Channel, sess)
	if released {
		s.dropSession(key, sess)
	}
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"success": released,
		"channel": req.Channel,
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	mgr, ok := s.parseStopRequest(w, r)
	if !ok {
		return
	}
	mgr.StopForegroundActivity()
	s.sendJSON(w, http.StatusAccepted, map[string]interface{}{"success": true})
}

func (s *Server) handleStopAll(w http.ResponseWriter, r *http.Request) {
	mgr, ok := s.parseStopRequest(w, r)
	if !ok {
		return
	}
	mgr.StopAllActivities()
	s.sendJSON(w, http.StatusAccepted, map[string]interface{}{"success": true})
}

func (s *Server) parseFocusRequest(w http.ResponseWriter, r *http.Request) (*focusRequest, *focus.Manager, bool) {
	if r.Method != http.MethodPost {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return nil, nil, false
	}
	var req focusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendErrorResponse(w, http.StatusBadRequest, "Failed to parse request body")
		return nil, nil, false
	}
	if req.Channel == "" {
		s.sendErrorResponse(w, http.StatusBadRequest, "Channel name is required")
		return nil, nil, false
	}
	if req.Interface == "" {
		s.sendErrorResponse(w, http.StatusBadRequest, "Interface name is required")
		return nil, nil, false
	}
	mgr := s.manager(req.Modality)
	if mgr == nil {
		s.sendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown modality: %s", req.Modality))
		return nil, nil, false
	}
	return &req, mgr, true
}

func (s *Server) parseStopRequest(w http.ResponseWriter, r *http.Request) (*focus.Manager, bool) {
	if r.Method != http.MethodPost {
		s.sendErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return nil, false
	}
	var req struct {
		Modality string `json:"modality,omitempty"`
	}
	// An empty body means the audio manager.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Modality = ""
	}
	mgr := s.manager(req.Modality)
	if mgr == nil {
		s.sendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Unknown modality: %s", req.Modality))
		return nil, false
	}
	return mgr, true
}

// dropSession removes the session table entry for key, but only while it
// still maps to sess: a newer acquisition may have replaced it.
func (s *Server) dropSession(key string, sess *session) {
	s.sessionLock.Lock()
	if s.sessions[key] == sess {
		delete(s.sessions, key)
	}
	s.sessionLock.Unlock()
}

func sessionKey(modality, channel, interfaceName string) string {
	if modality == "" {
		modality = ModalityAudio
	}
	return modality + "/" + channel + "/" + interfaceName
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) sendErrorResponse(w http.ResponseWriter, status int, message string) {
	slog.Debug("Request rejected", "status", status, "error", message)
	s.sendJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// getLocalIP returns a non-loopback IPv4 address for display purposes.
func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}
	return "localhost"
}
