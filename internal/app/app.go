package app

import (
	"context"
	"net/http"

	"github.com/fanoutlabs/herald/internal/pkg/clock"
	"github.com/fanoutlabs/herald/internal/pkg/config"
	"github.com/fanoutlabs/herald/internal/pkg/goroutine"
	"github.com/fanoutlabs/herald/internal/pkg/idempotency"
	"github.com/fanoutlabs/herald/internal/pkg/instrument"
	"github.com/fanoutlabs/herald/internal/pkg/jwt"
	"github.com/fanoutlabs/herald/internal/pkg/mail"
	"github.com/fanoutlabs/herald/internal/pkg/messaging"
	"github.com/fanoutlabs/herald/internal/pkg/router"
	"github.com/fanoutlabs/herald/internal/pkg/storage"
	"github.com/fanoutlabs/herald/internal/pkg/uid"
	"github.com/fanoutlabs/herald/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	oid       uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn     *pgxpool.Pool
	cacheConn  *redis.Client
	idemp      *idempotency.StateTracker
	mail       mail.Mail
	messaging  messaging.Messaging
	storage    storage.Storage
	httpClient *http.Client

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
