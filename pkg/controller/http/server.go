package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/airform/pkg/usecase"
	"github.com/secmon-lab/airform/pkg/utils/logging"
)

// DefaultFrontendURL is where the form builder runs in development
const DefaultFrontendURL = "http://localhost:5173"

type Server struct {
	router      *chi.Mux
	uc          *usecase.UseCases
	authUC      AuthUseCase
	frontendURL string
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithFrontendURL sets the origin allowed by CORS and the target of the
// post login redirect
func WithFrontendURL(url string) Options {
	return func(s *Server) {
		if url != "" {
			s.frontendURL = url
		}
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:      r,
		uc:          uc,
		frontendURL: DefaultFrontendURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authUC == nil {
		s.authUC = uc.Auth
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(s.frontendURL))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	})

	r.Route("/api", func(r chi.Router) {
		if s.authUC != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Get("/login", authLoginHandler(s.authUC))
				r.Get("/callback", authCallbackHandler(s.authUC, s.frontendURL))
				r.Post("/logout", authLogoutHandler(s.authUC))
				r.Get("/me", authMeHandler(s.authUC))
			})
		}

		// Signed in users
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Route("/airtable", func(r chi.Router) {
				r.Get("/me", airtableMeHandler(uc))
				r.Get("/bases", listBasesHandler(uc))
				r.Post("/bases", createBaseHandler(uc))
				r.Get("/bases/{baseID}/tables", listTablesHandler(uc))
				r.Get("/bases/{baseID}/tables/{tableID}/fields", listFieldsHandler(uc))
			})

			r.Route("/forms", func(r chi.Router) {
				r.Post("/", createFormHandler(uc))
				r.Get("/", listFormsHandler(uc))
				r.Get("/{formID}", getFormHandler(uc))
				r.Get("/{formID}/responses", listResponsesHandler(uc))
			})
		})

		// Anyone with the link
		r.Route("/public/forms/{formID}", func(r chi.Router) {
			r.Get("/", getPublicFormHandler(uc))
			r.Post("/responses", submitHandler(uc))
			r.Post("/attachments", uploadAttachmentHandler(uc))
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
