package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrMariodude/LibraCore/app/features/processpayment"
	"github.com/MrMariodude/LibraCore/app/features/returnloan"
	"github.com/MrMariodude/LibraCore/lending"
)

// LendingService is the part of lendingservice.Service the API calls.
type LendingService interface {
	Checkout(ctx context.Context, itemID uuid.UUID, borrowerID string, dueAt time.Time) (uuid.UUID, error)
	Return(ctx context.Context, loanID uuid.UUID) (returnloan.Result, error)
	ProcessPayment(ctx context.Context, loanID uuid.UUID) (processpayment.Result, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (lending.LoanView, error)
	ListLoansForBorrower(ctx context.Context, borrowerID string) ([]lending.LoanView, error)

	AddItem(ctx context.Context, title, author, genre string, publishedAt time.Time, totalCopies int) (lending.Item, error)
	SetTotalCopies(ctx context.Context, itemID uuid.UUID, totalCopies int) (lending.Item, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	GetItem(ctx context.Context, itemID uuid.UUID) (lending.Item, error)
	ListItems(ctx context.Context, field string, term string) ([]lending.Item, error)
}

const (
	logMsgRequestHandled = "http request handled"
	logMsgRequestFailed  = "http request failed"

	logAttrMethod     = "method"
	logAttrPath       = "path"
	logAttrStatus     = "status"
	logAttrDurationMS = "duration_ms"
	logAttrRequestID  = "request_id"
	logAttrError      = "error"
)

// API holds the HTTP handlers.
type API struct {
	service          LendingService
	validate         *validator.Validate
	allowedOrigins   []string
	logger           lending.Logger
	contextualLogger lending.ContextualLogger
}

// Option defines a functional option for configuring the API.
type Option func(*API) error

// WithLogger sets the logger for request logs.
//
// Info level: handled requests
// Error level: requests that failed with an internal error
func WithLogger(logger lending.Logger) Option {
	return func(a *API) error {
		a.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger. It takes precedence over WithLogger.
func WithContextualLogger(logger lending.ContextualLogger) Option {
	return func(a *API) error {
		a.contextualLogger = logger
		return nil
	}
}

// WithAllowedOrigins replaces the default CORS origins (http://* and https://*).
func WithAllowedOrigins(origins ...string) Option {
	return func(a *API) error {
		a.allowedOrigins = origins
		return nil
	}
}

// NewAPI creates the API on top of service.
func NewAPI(service LendingService, options ...Option) (*API, error) {
	a := &API{
		service:        service,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		allowedOrigins: []string{"https://*", "http://*"},
	}

	for _, option := range options {
		if err := option(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Router builds the chi router with all routes and middlewares.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Post("/", a.addItem)
			r.Get("/", a.listItems)
			r.Get("/{itemID}", a.getItem)
			r.Put("/{itemID}/copies", a.setTotalCopies)
			r.Delete("/{itemID}", a.removeItem)
		})

		r.Route("/loans", func(r chi.Router) {
			r.Post("/", a.checkout)
			r.Get("/{loanID}", a.getLoan)
			r.Post("/{loanID}/return", a.returnLoan)
			r.Post("/{loanID}/payment", a.processPayment)
		})

		r.Get("/borrowers/{borrowerID}/loans", a.loansForBorrower)
	})

	return r
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		a.logInfo(r.Context(), logMsgRequestHandled,
			logAttrMethod, r.Method,
			logAttrPath, r.URL.Path,
			logAttrStatus, ww.Status(),
			logAttrDurationMS, time.Since(start).Milliseconds(),
			logAttrRequestID, middleware.GetReqID(r.Context()),
		)
	})
}

func (a *API) logInfo(ctx context.Context, msg string, args ...any) {
	if a.contextualLogger != nil {
		a.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *API) logError(ctx context.Context, msg string, args ...any) {
	if a.contextualLogger != nil {
		a.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if a.logger != nil {
		a.logger.Error(msg, args...)
	}
}
