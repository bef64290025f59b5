package notification

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/inbound"
	"github.com/fanoutlabs/herald/internal/notification/outbound/cache"
	"github.com/fanoutlabs/herald/internal/notification/outbound/db"
	"github.com/fanoutlabs/herald/internal/notification/outbound/mq"
	"github.com/fanoutlabs/herald/internal/notification/outbound/sender"
	"github.com/fanoutlabs/herald/internal/notification/queue"
	"github.com/fanoutlabs/herald/internal/notification/stream"
	"github.com/fanoutlabs/herald/internal/notification/usecase"
	"github.com/fanoutlabs/herald/internal/pkg/clock"
	"github.com/fanoutlabs/herald/internal/pkg/config"
	"github.com/fanoutlabs/herald/internal/pkg/goroutine"
	"github.com/fanoutlabs/herald/internal/pkg/idempotency"
	"github.com/fanoutlabs/herald/internal/pkg/instrument"
	"github.com/fanoutlabs/herald/internal/pkg/mail"
	"github.com/fanoutlabs/herald/internal/pkg/messaging"
	"github.com/fanoutlabs/herald/internal/pkg/router"
	"github.com/fanoutlabs/herald/internal/pkg/storage"
	"github.com/fanoutlabs/herald/internal/pkg/uid"
	"github.com/fanoutlabs/herald/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool
	Redis       *redis.Client
	Messaging   messaging.Messaging
	Storage     storage.Storage
	Config      config.Config
	Instrument  instrument.Instrumentation
	UID         uid.NumberID
	UUID        uid.StringID
	OID         uid.StringID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Router      *router.Router
	Mail        mail.Mail
	Idempotency *idempotency.StateTracker
	HTTPClient  *http.Client
}

func New(dep Dependency) error {
	monitorHub := stream.NewHub[entity.DeliveryEvent]()
	realtimeHub := stream.NewHub[entity.RealtimeMessage]()

	registry := sender.NewRegistry()
	if err := registerSenders(registry, dep, realtimeHub); err != nil {
		return err
	}

	ucDep := usecase.Dependency{
		Queues:     queue.NewSet(),
		Senders:    registry,
		Monitor:    monitorHub,
		Realtime:   realtimeHub,
		Storage:    dep.Storage,
		Config:     dep.Config,
		UID:        dep.UID,
		UUID:       dep.UUID,
		OID:        dep.OID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Goroutine:  dep.Goroutine,
		Instrument: dep.Instrument,
	}

	if dep.DBConn != nil {
		backoff := dep.Config.GetSecond("modules.notification.backoff_seconds")
		if backoff <= 0 {
			backoff = 5 * time.Minute
		}
		maxRetry := dep.Config.GetInt32("modules.notification.max_retry_count")
		if maxRetry <= 0 {
			maxRetry = 3
		}
		ucDep.RepoDB = db.NewDB(dep.DBConn, dep.Instrument, backoff, maxRetry)
	}
	if dep.Redis != nil {
		ucDep.Cache = cache.NewRedis(dep.Redis, dep.Instrument)
	}
	if dep.Messaging != nil {
		ucDep.Events = mq.NewMessaging(dep.Messaging, dep.Instrument)
	}

	uc := usecase.NewNotification(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Idempotency)
	if dep.Ctx != nil && dep.Messaging != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	if dep.Ctx != nil {
		dep.Goroutine.Go(dep.Ctx, uc.RunWorker)
		dep.Goroutine.Go(dep.Ctx, uc.RunRetryScheduler)
	}

	return nil
}

// registerSenders wires one sender per enabled channel. An enabled channel
// missing its transport configuration is a startup error, not a runtime
// surprise.
func registerSenders(registry *sender.Registry, dep Dependency, realtimeHub *stream.Hub[entity.RealtimeMessage]) error {
	cfg := dep.Config
	prefix := "modules.notification.senders."

	if cfg.GetBool(prefix + "email.enabled") {
		if dep.Mail == nil {
			return errors.New("notification: email sender enabled but no mailer configured")
		}
		registry.Register(entity.ChannelEmail,
			sender.NewEmail(dep.Mail, cfg.GetString(prefix+"email.from"), dep.Instrument))
	}

	if cfg.GetBool(prefix + "slack.enabled") {
		registry.Register(entity.ChannelSlack, sender.NewSlack(dep.HTTPClient))
	}

	if cfg.GetBool(prefix + "teams.enabled") {
		registry.Register(entity.ChannelTeams, sender.NewTeams(dep.HTTPClient))
	}

	if cfg.GetBool(prefix + "telegram.enabled") {
		token := cfg.GetString(prefix + "telegram.bot_token")
		if token == "" {
			return errors.New("notification: telegram sender enabled but bot token missing")
		}
		registry.Register(entity.ChannelTelegram,
			sender.NewTelegram(dep.HTTPClient, cfg.GetString(prefix+"telegram.base_url"), token))
	}

	smsEnabled := cfg.GetBool(prefix + "sms.enabled")
	waEnabled := cfg.GetBool(prefix + "whatsapp.enabled")
	if smsEnabled || waEnabled {
		twilioCfg := sender.TwilioConfig{
			BaseURL:    cfg.GetString(prefix + "twilio.base_url"),
			AccountSID: cfg.GetString(prefix + "twilio.account_sid"),
			AuthToken:  cfg.GetString(prefix + "twilio.auth_token"),
			From:       cfg.GetString(prefix + "twilio.from"),
		}
		if twilioCfg.AccountSID == "" || twilioCfg.AuthToken == "" {
			return errors.New("notification: sms/whatsapp sender enabled but twilio credentials missing")
		}

		if smsEnabled {
			registry.Register(entity.ChannelSMS, sender.NewTwilioSMS(dep.HTTPClient, twilioCfg))
		}
		if waEnabled {
			registry.Register(entity.ChannelWhatsApp, sender.NewTwilioWhatsApp(dep.HTTPClient, twilioCfg))
		}
	}

	if cfg.GetBool(prefix + "realtime.enabled") {
		registry.Register(entity.ChannelRealtime, sender.NewRealtime(realtimeHub, dep.Clock))
	}

	return nil
}
