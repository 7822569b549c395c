package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chatglass/chatglass/pkg/buildinfo"
	"github.com/chatglass/chatglass/pkg/cache"
	pkgerrors "github.com/chatglass/chatglass/pkg/errors"
	"github.com/chatglass/chatglass/pkg/pipeline"
	"github.com/chatglass/chatglass/pkg/render"
	"github.com/chatglass/chatglass/pkg/store"
)

// renderRequest is the body of POST /api/v1/render. Exactly one of
// Component and Legacy carries the input. Optional fields fall back to
// the server's render defaults when absent, which is why the overrides
// are pointers rather than values.
type renderRequest struct {
	Component  json.RawMessage `json:"component,omitempty"`
	Legacy     string          `json:"legacy,omitempty"`
	Format     string          `json:"format,omitempty"`
	IntervalMS *int64          `json:"interval_ms,omitempty"`
	NoHover    *bool           `json:"no_hover,omitempty"`
	LinkTarget string          `json:"link_target,omitempty"`
	Seed       *uint64         `json:"seed,omitempty"`
	Title      string          `json:"title,omitempty"`
	Detailed   bool            `json:"detailed,omitempty"`
	Refresh    bool            `json:"refresh,omitempty"`
}

// createDocumentRequest is the body of POST /api/v1/documents.
type createDocumentRequest struct {
	Name       string          `json:"name"`
	Component  json.RawMessage `json:"component,omitempty"`
	Legacy     string          `json:"legacy,omitempty"`
	TTLSeconds int64           `json:"ttl_seconds,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	input, legacy, err := requestInput(req.Component, req.Legacy)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := render.FormatJSON
	if req.Format != "" {
		format, err = render.ParseFormat(req.Format)
		if err != nil {
			s.writeError(w, err)
			return
		}
	}

	opts := s.renderOptions(input, legacy, format)
	if req.IntervalMS != nil {
		opts.IntervalMS = *req.IntervalMS
	}
	if req.NoHover != nil {
		opts.NoHover = *req.NoHover
	}
	if req.LinkTarget != "" {
		opts.LinkTarget = req.LinkTarget
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	opts.Title = req.Title
	opts.Detailed = req.Detailed
	opts.Refresh = req.Refresh

	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "invalid render options: %v", err))
		return
	}

	ctx := r.Context()
	tree, _, err := s.runner.DecodeWithCacheInfo(ctx, opts)
	if err != nil {
		s.writeError(w, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidComponent, err, "invalid component: %v", err))
		return
	}
	snapshot, _, err := s.runner.ResolveWithCacheInfo(ctx, tree, opts)
	if err != nil {
		s.writeError(w, pkgerrors.Wrap(pkgerrors.ErrCodeInternal, err, "resolve runs"))
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(ctx, tree, snapshot, opts)
	if err != nil {
		s.writeError(w, pkgerrors.Wrap(pkgerrors.ErrCodeRender, err, "render %s", format))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.Header().Set("X-Runs-Hash", cache.Hash(snapshot))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifacts[format]); err != nil {
		s.logger.Error("write artifact", "format", format, "err", err)
	}
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if err := pkgerrors.ValidateDocumentName(req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	input, legacy, err := requestInput(req.Component, req.Legacy)
	if err != nil {
		s.writeError(w, err)
		return
	}

	doc, err := store.NewDocument(req.Name, string(input), legacy, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		s.writeError(w, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidComponent, err, "invalid component: %v", err))
		return
	}
	if err := s.store.Put(r.Context(), doc); err != nil {
		s.writeError(w, pkgerrors.Wrap(pkgerrors.ErrCodeStore, err, "store document"))
		return
	}

	s.logger.Info("document created", "id", doc.ID, "name", doc.Name, "legacy", doc.Legacy)
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.lookupDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := pkgerrors.ValidateDocumentID(id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, mapStoreError(err, id))
		return
	}

	// Stored pages are keyed by document id, so drop the cached render
	// along with the document.
	_ = s.cache.Delete(r.Context(), s.keyer.PageKey(id, string(render.FormatHTML)))

	s.logger.Info("document deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handlePage serves the rendered HTML page for a stored document.
// Pages cache under a short TTL keyed by document id.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	doc, err := s.lookupDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx := r.Context()
	pageKey := s.keyer.PageKey(doc.ID, string(render.FormatHTML))
	if page, hit, err := s.cache.Get(ctx, pageKey); err == nil && hit {
		writePage(w, page, true)
		return
	}

	opts := s.renderOptions([]byte(doc.Raw), doc.Legacy, render.FormatHTML)
	opts.Title = doc.Name
	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, pkgerrors.Wrap(pkgerrors.ErrCodeRender, err, "render page"))
		return
	}

	page := result.Artifacts[render.FormatHTML]
	if err := s.cache.Set(ctx, pageKey, page, cache.TTLPage); err != nil {
		s.logger.Warn("cache page", "id", doc.ID, "err", err)
	}
	writePage(w, page, false)
}

// lookupDocument resolves the {id} URL parameter to a stored document,
// mapping store errors to response codes.
func (s *Server) lookupDocument(r *http.Request) (*store.Document, error) {
	id := chi.URLParam(r, "id")
	if err := pkgerrors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	doc, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, mapStoreError(err, id)
	}
	return doc, nil
}

// decodeBody reads a size-capped JSON body into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}

// renderOptions builds pipeline options from the server defaults for
// the given input and format.
func (s *Server) renderOptions(input []byte, legacy bool, format render.Format) pipeline.Options {
	return pipeline.Options{
		Input:      input,
		Legacy:     legacy,
		IntervalMS: s.defaults.IntervalMS,
		NoHover:    s.defaults.NoHover,
		LinkTarget: s.defaults.LinkTarget,
		Seed:       s.defaults.Seed,
		Formats:    []render.Format{format},
		Logger:     s.logger,
	}
}

// requestInput picks the raw input from a component/legacy pair and
// rejects bodies that set both or neither.
func requestInput(component json.RawMessage, legacy string) ([]byte, bool, error) {
	hasComponent := len(component) > 0
	hasLegacy := strings.TrimSpace(legacy) != ""
	switch {
	case hasComponent && hasLegacy:
		return nil, false, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "component and legacy are mutually exclusive")
	case hasComponent:
		return component, false, nil
	case hasLegacy:
		return []byte(legacy), true, nil
	default:
		return nil, false, pkgerrors.New(pkgerrors.ErrCodeInvalidInput, "either component or legacy is required")
	}
}

func mapStoreError(err error, id string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return pkgerrors.Wrap(pkgerrors.ErrCodeDocumentNotFound, err, "document %s not found", id)
	case errors.Is(err, store.ErrExpired):
		return pkgerrors.Wrap(pkgerrors.ErrCodeDocumentNotFound, err, "document %s expired", id)
	default:
		return pkgerrors.Wrap(pkgerrors.ErrCodeStore, err, "load document %s", id)
	}
}

func writePage(w http.ResponseWriter, page []byte, hit bool) {
	w.Header().Set("Content-Type", render.FormatHTML.ContentType())
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
