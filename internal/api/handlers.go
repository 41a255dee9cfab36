package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/svglayers/pkg/buildinfo"
	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/pipeline"
	"github.com/matzehuels/svglayers/pkg/render/outline"
)

// Response headers set by /v1/process.
const (
	HeaderRunID           = "X-Run-ID"
	HeaderCache           = "X-Cache"
	HeaderGroupsFlattened = "X-Groups-Flattened"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	opts, err := s.processOptions(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cacheStatus := "miss"
	if res.CacheHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set(HeaderRunID, res.RunID)
	w.Header().Set(HeaderCache, cacheStatus)
	w.Header().Set(HeaderGroupsFlattened, strconv.Itoa(res.Changes(pipeline.StageUngroup)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = outline.FormatText
	}
	var opts outline.Options
	if v := q.Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "depth must be a non-negative integer: %q", v))
			return
		}
		opts.MaxDepth = n
	}
	opts.Detailed = q.Get("detailed") == "true"

	body, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, hit, err := s.runner.Outline(r.Context(), body, format, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	switch format {
	case outline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	case outline.FormatDOT:
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if hit {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// processOptions overlays query parameters on the server's base options.
func (s *Server) processOptions(q url.Values) (pipeline.Options, error) {
	opts := s.base
	opts.RemoveKinds = append([]string(nil), s.base.RemoveKinds...)
	opts.Logger = nil

	toggles := []struct {
		name string
		skip *bool
	}{
		{"prune", &opts.SkipPrune},
		{"ungroup", &opts.SkipUngroup},
		{"remove", &opts.SkipRemove},
		{"regroup", &opts.SkipRegroup},
	}
	for _, t := range toggles {
		if v := q.Get(t.name); v != "" {
			on, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean: %q", t.name, v)
			}
			*t.skip = !on
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"start_depth", &opts.StartDepth},
		{"max_depth", &opts.MaxDepth},
		{"keep_depth", &opts.KeepDepth},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer: %q", p.name, v)
			}
			*p.dst = n
		}
	}

	if v := q.Get("bake_viewbox"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "bake_viewbox must be a boolean: %q", v)
		}
		opts.BakeViewBox = b
	}
	if q.Has("remove_kinds") {
		opts.RemoveKinds = splitList(q.Get("remove_kinds"))
	}
	if v := q.Get("prefix"); v != "" {
		opts.GroupPrefix = v
	}
	opts.Refresh = q.Get("refresh") == "true"
	return opts, nil
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", s.maxBody)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return body, nil
}

// fail maps err to a status code and writes the JSON error body.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeError(w, status, code, msg)
}

func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
