package core

import (
	"context"
	"log/slog"

	"github.com/quillhq/quill/cache"
	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/oauth2"
)

// Reconciler resolves provider profiles to local users. *identity.Reconciler
// satisfies it.
type Reconciler interface {
	Reconcile(profile *oauth2.Profile) (*db.User, error)
}

// ProfileFetcher runs the provider side of an OAuth2 login. *oauth2.Fetcher
// satisfies it.
type ProfileFetcher interface {
	Fetch(ctx context.Context, provider config.OAuth2Provider, code, codeVerifier, redirectURI string) (*oauth2.Profile, error)
}

// App is the application wide context. Handlers and middleware have App as
// receiver; heavy long-lived objects live here.
type App struct {
	dbAuth        db.DbAuth
	dbQueue       db.DbQueue
	cfg           *config.Config
	logger        *slog.Logger
	codec         *crypto.Codec
	validator     Validator
	authenticator Authenticator
	reconciler    Reconciler
	profiles      ProfileFetcher
	// states holds issued OAuth2 state parameters, mapping state -> provider
	// name. Entries are consumed on login.
	states cache.Cache[string, string]
}

func (a *App) DbAuth() db.DbAuth           { return a.dbAuth }
func (a *App) DbQueue() db.DbQueue         { return a.dbQueue }
func (a *App) Config() *config.Config      { return a.cfg }
func (a *App) Logger() *slog.Logger        { return a.logger }
func (a *App) TokenCodec() *crypto.Codec   { return a.codec }
func (a *App) Validator() Validator        { return a.validator }
func (a *App) Auth() Authenticator         { return a.authenticator }

// SetDb sets the database interfaces for auth and queue
func (a *App) SetDb(dbApp db.DbApp) {
	if dbApp == nil {
		panic("DbApp cannot be nil")
	}
	a.dbAuth = dbApp
	a.dbQueue = dbApp
}

func (a *App) SetConfig(cfg *config.Config)            { a.cfg = cfg }
func (a *App) SetLogger(l *slog.Logger)                { a.logger = l }
func (a *App) SetTokenCodec(c *crypto.Codec)           { a.codec = c }
func (a *App) SetValidator(v Validator)                { a.validator = v }
func (a *App) SetAuthenticator(auth Authenticator)     { a.authenticator = auth }
func (a *App) SetReconciler(r Reconciler)              { a.reconciler = r }
func (a *App) SetProfileFetcher(f ProfileFetcher)      { a.profiles = f }
func (a *App) SetStateCache(c cache.Cache[string, string]) { a.states = c }
