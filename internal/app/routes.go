package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/formrelay/internal/form"
	"github.com/formrelay/internal/handler"
	"github.com/formrelay/internal/middleware"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(app.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RateLimit(app.config.RateLimitPerMinute))
	r.MethodNotAllowed(handler.MethodNotAllowed())

	r.Get("/api/health", handler.Health(app.store))

	validator := &form.Validator{
		MaxBytes:     app.config.MaxUploadBytes,
		AllowedTypes: app.config.AllowedTypes,
	}

	registration := handler.NewSubmitHandler(app.logger, form.Registration(), validator,
		app.store, app.sender, app.config.RegistrationSubject, app.config.StripMetadata)
	r.Post("/api/register", registration.Handle)

	contact := handler.NewSubmitHandler(app.logger, form.Contact(), validator,
		app.store, app.sender, app.config.ContactSubject, app.config.StripMetadata)
	r.Post("/api/contact", contact.Handle)

	return r
}
