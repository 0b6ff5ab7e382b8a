// Package httpapi exposes the REST surface of the server: route wiring,
// bearer-token middleware, and request handlers.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/akapustin/itemhub/internal/logging"
	"github.com/akapustin/itemhub/internal/server/config"
	"github.com/akapustin/itemhub/internal/server/models"
	"github.com/akapustin/itemhub/internal/server/services"
)

// UserService is the part of the user service the HTTP layer depends on.
type UserService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Create(ctx context.Context, in services.CreateUserInput) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, error)
	Update(ctx context.Context, id string, in services.UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// ItemService is the part of the item service the HTTP layer depends on.
type ItemService interface {
	Create(ctx context.Context, principal *models.User, title, description string) (*models.Item, error)
	Get(ctx context.Context, principal *models.User, id string) (*models.Item, error)
	List(ctx context.Context, principal *models.User, offset, limit int) ([]*models.Item, error)
	Update(ctx context.Context, principal *models.User, id string, in services.UpdateItemInput) (*models.Item, error)
	Delete(ctx context.Context, principal *models.User, id string) error
}

type HTTPServer struct {
	address     string
	logger      logging.Logger
	users       UserService
	items       ItemService
	jwtSecret   []byte
	corsOrigins []string
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us UserService, is ItemService) *HTTPServer {
	return &HTTPServer{
		address:     cfg.EndpointAddr,
		logger:      l.With("module", "http_server"),
		users:       us,
		items:       is,
		jwtSecret:   []byte(cfg.SecretKey),
		corsOrigins: cfg.CORSAllowedOrigins,
	}
}

// Router builds the chi router with all API routes mounted under /api/v1.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.root)
	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.With(s.requireUser, s.requireActive).Post("/test-token", s.testToken)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireUser, s.requireActive)

			r.With(s.requireSuperuser).Get("/", s.listUsers)
			r.With(s.requireSuperuser).Post("/", s.createUser)

			r.Get("/me", s.readUserMe)
			r.Put("/me", s.updateUserMe)

			r.Get("/{id}", s.readUserByID)
			r.With(s.requireSuperuser).Put("/{id}", s.updateUser)
			r.With(s.requireSuperuser).Delete("/{id}", s.deleteUser)
		})

		r.Route("/items", func(r chi.Router) {
			r.Use(s.requireUser, s.requireActive)

			r.Get("/", s.listItems)
			r.Post("/", s.createItem)
			r.Get("/{id}", s.readItem)
			r.Put("/{id}", s.updateItem)
			r.Delete("/{id}", s.deleteItem)
		})
	})

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *HTTPServer) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the itemhub API"})
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
