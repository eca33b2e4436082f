package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/muurk/screwctl/internal/command"
	"github.com/muurk/screwctl/internal/control"
	"github.com/muurk/screwctl/internal/devicelink"
	"github.com/muurk/screwctl/internal/exchange"
	"github.com/muurk/screwctl/internal/lockgate"
	"github.com/muurk/screwctl/internal/logging"
	"github.com/muurk/screwctl/internal/preset"
	"github.com/muurk/screwctl/internal/session"
)

// maxUploadSize bounds an imported file
const maxUploadSize = 8 << 20

// Handler returns the panel's HTTP routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.getState)
		r.Get("/ports", s.getPorts)

		r.Post("/select", s.postSelect)
		r.Post("/navigate", s.postNavigate)
		r.Post("/values", s.postValues)
		r.Post("/step", s.postStep)
		r.Post("/button", s.postButton)
		r.Post("/lock", s.postLock)

		r.Post("/presets", s.addPreset)
		r.Delete("/presets", s.deleteSelected)
		r.Delete("/presets/{index}", s.deletePreset)
		r.Put("/presets/name", s.renamePreset)

		r.Post("/import", s.postImport)
		r.Get("/export", s.getExport)

		r.Post("/connect", s.postConnect)
		r.Post("/disconnect", s.postDisconnect)
	})

	r.Get("/ws", s.handleWS)

	return r
}

// requestLogger logs each request through the package logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error onto a status code
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, lockgate.ErrLocked), errors.Is(err, lockgate.ErrUnlocked):
		status = http.StatusConflict
	case errors.Is(err, preset.ErrEmptyStore):
		status = http.StatusConflict
	case errors.Is(err, exchange.ErrNoData), errors.Is(err, exchange.ErrMissingColumns),
		errors.Is(err, exchange.ErrUnknownFormat), errors.Is(err, preset.ErrNoValidPresets),
		errors.Is(err, control.ErrNotFinite):
		status = http.StatusUnprocessableEntity
	case devicelink.IsUnsupportedError(err):
		status = http.StatusNotImplemented
	case devicelink.IsConnectionError(err):
		status = http.StatusBadGateway
	}

	resp := errorResponse{Error: devicelink.GetShortErrorMessage(err)}
	var lerr *devicelink.LinkError
	if errors.As(err, &lerr) {
		resp.Hint = devicelink.GetTroubleshootingHint(err)
	}
	writeJSON(w, status, resp)
}

// act runs fn and replies with the new state or fn's error
func (s *Server) act(w http.ResponseWriter, fn func(*session.Session) error) {
	view, err := s.do(fn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) getPorts(w http.ResponseWriter, r *http.Request) {
	ports, err := s.listPorts()
	if err != nil {
		writeError(w, err)
		return
	}
	if ports == nil {
		ports = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ports": ports})
}

type selectRequest struct {
	Index int `json:"index"`
}

func (s *Server) postSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	// Out-of-range selection is ignored, not an error.
	s.act(w, func(sess *session.Session) error {
		sess.Select(req.Index)
		return nil
	})
}

type navigateRequest struct {
	Direction int `json:"direction"`
}

func (s *Server) postNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Direction != -1 && req.Direction != 1 {
		writeError(w, fmt.Errorf("direction must be -1 or 1"))
		return
	}
	s.act(w, func(sess *session.Session) error {
		sess.Navigate(req.Direction)
		return nil
	})
}

type valuesRequest struct {
	Torque *float64 `json:"torque,omitempty"`
	Speed  *float64 `json:"speed,omitempty"`
}

func (s *Server) postValues(w http.ResponseWriter, r *http.Request) {
	var req valuesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.act(w, func(sess *session.Session) error {
		if req.Torque != nil {
			if err := sess.SetTorque(*req.Torque); err != nil {
				return err
			}
		}
		if req.Speed != nil {
			return sess.SetSpeed(*req.Speed)
		}
		return nil
	})
}

type stepRequest struct {
	Parameter string `json:"parameter"`
	Delta     int    `json:"delta"`
}

func (s *Server) postStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := command.ParseParameter(req.Parameter)
	if err != nil {
		writeError(w, err)
		return
	}
	s.act(w, func(sess *session.Session) error {
		return sess.Step(p, req.Delta)
	})
}

type buttonRequest struct {
	Parameter string `json:"parameter"`
	Index     int    `json:"index"`
}

func (s *Server) postButton(w http.ResponseWriter, r *http.Request) {
	var req buttonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := command.ParseParameter(req.Parameter)
	if err != nil {
		writeError(w, err)
		return
	}
	s.act(w, func(sess *session.Session) error {
		return sess.PressButton(p, req.Index)
	})
}

type lockRequest struct {
	Locked *bool `json:"locked,omitempty"` // toggles when absent
}

func (s *Server) postLock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	s.act(w, func(sess *session.Session) error {
		switch {
		case req.Locked == nil:
			sess.ToggleLock()
		case *req.Locked:
			sess.SetLock(lockgate.Locked)
		default:
			sess.SetLock(lockgate.Unlocked)
		}
		return nil
	})
}

func (s *Server) addPreset(w http.ResponseWriter, r *http.Request) {
	var added preset.Preset
	view, err := s.do(func(sess *session.Session) error {
		p, err := sess.Add()
		added = p
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Preset preset.Preset `json:"preset"`
		State  session.View  `json:"state"`
	}{added, view})
}

func (s *Server) deleteSelected(w http.ResponseWriter, r *http.Request) {
	s.act(w, func(sess *session.Session) error {
		return sess.Delete()
	})
}

func (s *Server) deletePreset(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, fmt.Errorf("invalid index: %w", err))
		return
	}
	s.act(w, func(sess *session.Session) error {
		return sess.DeleteAt(index)
	})
}

type renameRequest struct {
	Name string `json:"name"`
}

func (s *Server) renamePreset(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.act(w, func(sess *session.Session) error {
		return sess.Rename(req.Name)
	})
}

// postImport accepts a multipart "file" field or a raw body with a
// ?filename= query parameter.
func (s *Server) postImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	data, filename, err := readUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var result session.ImportResult
	view, err := s.do(func(sess *session.Session) error {
		res, err := sess.Import(data, filename)
		result = res
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Result session.ImportResult `json:"result"`
		State  session.View         `json:"state"`
	}{result, view})
}

func readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing file field: %w", err)
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", fmt.Errorf("read upload: %w", err)
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, r.URL.Query().Get("filename"), nil
}

func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	f := exchange.XLSX
	if name := r.URL.Query().Get("format"); name != "" {
		var ok bool
		if f, ok = exchange.ByName(name); !ok {
			writeError(w, fmt.Errorf("%q: %w", name, exchange.ErrUnknownFormat))
			return
		}
	}

	s.mu.Lock()
	data, filename, err := s.session.Export(f)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(f))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func contentType(f exchange.Format) string {
	switch f {
	case exchange.XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case exchange.CSV:
		return "text/csv; charset=utf-8"
	case exchange.JSON:
		return "application/json"
	case exchange.YAML:
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}

type connectRequest struct {
	Port string `json:"port,omitempty"` // configured port when empty
}

func (s *Server) postConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	s.act(w, func(sess *session.Session) error {
		return sess.Connect(r.Context(), req.Port)
	})
}

func (s *Server) postDisconnect(w http.ResponseWriter, r *http.Request) {
	s.act(w, func(sess *session.Session) error {
		return sess.Disconnect()
	})
}
