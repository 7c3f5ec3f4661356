// Package stubserver runs a minimal in-memory FHIR endpoint so the seeder
// can be exercised end to end without a real server. It implements just
// the surface the seeder touches: create-by-POST with server-assigned ids,
// read-by-id, and type-level search.
package stubserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/fhir-seeder/internal/fhir"
)

const mimeFHIRJSON = "application/fhir+json"

// Store is a thread-safe in-memory resource store keyed by resource type,
// preserving insertion order per type.
type Store struct {
	mu        sync.RWMutex
	resources map[string][]fhir.Resource
	byID      map[string]fhir.Resource
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		resources: make(map[string][]fhir.Resource),
		byID:      make(map[string]fhir.Resource),
	}
}

// Create stores the resource under a freshly assigned id and returns it.
func (s *Store) Create(resourceType string, resource fhir.Resource) fhir.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	resource["id"] = id
	s.resources[resourceType] = append(s.resources[resourceType], resource)
	s.byID[resourceType+"/"+id] = resource
	return resource
}

// Get returns the resource with the given type and id, or nil.
func (s *Store) Get(resourceType, id string) fhir.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[resourceType+"/"+id]
}

// List returns all resources of a type in insertion order.
func (s *Store) List(resourceType string) []fhir.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]fhir.Resource, len(s.resources[resourceType]))
	copy(out, s.resources[resourceType])
	return out
}

// Count returns the number of stored resources of a type.
func (s *Store) Count(resourceType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources[resourceType])
}

// Server is the echo application around a Store.
type Server struct {
	echo   *echo.Echo
	store  *Store
	logger zerolog.Logger
}

// New creates a stub server with request logging.
func New(logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, store: NewStore(), logger: logger}

	e.Use(requestLogger(logger))
	e.GET("/health", s.handleHealth)
	e.POST("/:type", s.handleCreate)
	e.GET("/:type", s.handleSearch)
	e.GET("/:type/:id", s.handleRead)
	return s
}

// Store exposes the backing store, mainly for tests.
func (s *Server) Store() *Store {
	return s.store
}

// Handler returns the root HTTP handler, for mounting under httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until the listener fails or is closed.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("stub FHIR server listening")
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(c echo.Context) error {
	resourceType := c.Param("type")

	var resource fhir.Resource
	if err := json.NewDecoder(c.Request().Body).Decode(&resource); err != nil {
		return respond(c, http.StatusBadRequest,
			fhir.NewOperationOutcome(fhir.IssueSeverityError, "structure", "request body is not a JSON object"))
	}
	if resource.Type() != resourceType {
		return respond(c, http.StatusBadRequest,
			fhir.NewOperationOutcome(fhir.IssueSeverityError, "invalid",
				"resourceType does not match request path"))
	}

	created := s.store.Create(resourceType, resource)
	return respond(c, http.StatusCreated, created)
}

func (s *Server) handleRead(c echo.Context) error {
	resource := s.store.Get(c.Param("type"), c.Param("id"))
	if resource == nil {
		return respond(c, http.StatusNotFound,
			fhir.NewOperationOutcome(fhir.IssueSeverityError, "not-found", "resource not found"))
	}
	return respond(c, http.StatusOK, resource)
}

func (s *Server) handleSearch(c echo.Context) error {
	bundle := fhir.NewSearchBundle(s.store.List(c.Param("type")))
	return respond(c, http.StatusOK, bundle)
}

func respond(c echo.Context, status int, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.Blob(status, mimeFHIRJSON, data)
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}
			evt.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")

			return err
		}
	}
}
