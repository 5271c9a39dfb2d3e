package main

import (
	"log/slog"
	"net/http"

	"github.com/quillhq/quill/core"
	"github.com/quillhq/quill/router"
	"github.com/quillhq/quill/server"
)

func registerRoutes(rt router.Router, app *core.App, logger *slog.Logger) {
	requestLog := server.RequestLog(logger)

	chain := func(h http.HandlerFunc) http.Handler {
		return router.NewChain(h).WithMiddleware(requestLog).Handler()
	}

	rt.Post("/api/auth/register", chain(app.RegisterWithPasswordHandler))
	rt.Post("/api/auth/login", chain(app.AuthWithPasswordHandler))
	rt.Post("/api/auth/request-verification", chain(app.RequestEmailVerificationHandler))
	rt.Post("/api/auth/confirm-verification", chain(app.ConfirmEmailVerificationHandler))
	rt.Post("/api/auth/forgot-password", chain(app.RequestPasswordResetHandler))
	rt.Post("/api/auth/reset-password", chain(app.ConfirmPasswordResetHandler))
	rt.Post("/api/auth/oauth2", chain(app.AuthWithOAuth2Handler))
	rt.Get("/api/auth/oauth2-providers", chain(app.ListOAuth2ProvidersHandler))
	rt.Get("/api/auth/me", chain(app.MeHandler))
}
