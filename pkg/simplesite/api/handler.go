package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/simple-site/pkg/simplesite"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every 404 and 500 response
type ErrorResponse struct {
	Error  string `json:"error"`
	Path   string `json:"path,omitempty"`
	Method string `json:"method,omitempty"`
}

// Handler serves the site builder API
type Handler struct {
	service simplesite.Service
	logger  *zap.Logger
	metrics MetricsCollector
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithLogger sets the request and error logger
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMetrics records every request with collector
func WithMetrics(collector MetricsCollector) HandlerOption {
	return func(h *Handler) {
		h.metrics = collector
	}
}

// NewHandler creates a new API handler
func NewHandler(service simplesite.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		service: service,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the full API router, middleware included
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(CORSMiddleware)
	r.Use(middleware.RequestID)
	if h.metrics != nil {
		r.Use(MetricsMiddleware(h.metrics))
	}
	r.Use(LoggingMiddleware(h.logger))
	r.Use(RecoveryMiddleware(h.logger))
	r.Use(PreflightMiddleware)
	r.Use(IdentityMiddleware)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sites", h.ListSites)
		r.Post("/sites", h.CreateSite)
		r.Get("/sites/{siteID}", h.GetSite)
		r.Patch("/sites/{siteID}", h.UpdateSite)
		r.Get("/sites/{siteID}/pages", h.ListPages)
		r.Post("/sites/{siteID}/pages", h.CreatePage)

		r.Get("/pages/{pageID}", h.GetPage)
		r.Patch("/pages/{pageID}", h.UpdatePage)
		r.Post("/pages/{pageID}/publish", h.PublishPage)
	})

	return r
}

// NotFound answers requests that match no route
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, ErrorResponse{Error: "Not found", Path: r.URL.Path, Method: r.Method})
}

// Site handlers

func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.service.ListSites(r.Context(), AccountID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, sites)
}

func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req simplesite.CreateSiteRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	site, err := h.service.CreateSite(r.Context(), AccountID(r.Context()), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, site)
}

func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	site, err := h.service.GetSite(r.Context(), AccountID(r.Context()), chi.URLParam(r, "siteID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, site)
}

func (h *Handler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	var patch simplesite.SitePatch
	if err := decodeBody(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	site, err := h.service.UpdateSite(r.Context(), AccountID(r.Context()), chi.URLParam(r, "siteID"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, site)
}

// Page handlers

func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.service.ListPages(r.Context(), AccountID(r.Context()), chi.URLParam(r, "siteID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, pages)
}

func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req simplesite.CreatePageRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.service.CreatePage(r.Context(), AccountID(r.Context()), chi.URLParam(r, "siteID"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, page)
}

func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.GetPage(r.Context(), AccountID(r.Context()), chi.URLParam(r, "pageID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	var patch simplesite.PagePatch
	if err := decodeBody(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.service.UpdatePage(r.Context(), AccountID(r.Context()), chi.URLParam(r, "pageID"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

func (h *Handler) PublishPage(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.PublishPage(r.Context(), AccountID(r.Context()), chi.URLParam(r, "pageID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// decodeBody decodes a JSON request body into v. An empty body decodes as
// an empty object.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeError maps err onto the API's two failure shapes: 404 for a missing
// or foreign entity, 500 with the error text for everything else.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, simplesite.ErrSiteNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse{Error: "Site not found"})
	case errors.Is(err, simplesite.ErrPageNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse{Error: "Page not found"})
	default:
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})
	}
}
