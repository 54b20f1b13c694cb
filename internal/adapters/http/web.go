package web

import (
	"context"
	"net/http"
	"time"

	"techday/internal/adapters/email"
	"techday/internal/adapters/http/middleware"
	"techday/internal/adapters/http/perf"
	"techday/internal/adapters/storage"
	adminStore "techday/internal/adapters/storage/admin"
	auditStore "techday/internal/adapters/storage/audit"
	newsletterStore "techday/internal/adapters/storage/newsletter"
	outboxStore "techday/internal/adapters/storage/outbox"
	pitchStore "techday/internal/adapters/storage/pitch"
	registrationStore "techday/internal/adapters/storage/registration"
	scheduleStore "techday/internal/adapters/storage/schedule"
	sessionStore "techday/internal/adapters/storage/session"
	speakerStore "techday/internal/adapters/storage/speaker"
	sponsorStore "techday/internal/adapters/storage/sponsor"
	"techday/internal/application/orchestrators"
	"techday/internal/domain/admin"
	"techday/internal/domain/session"
)

// Stores holds all storage dependencies.
type Stores struct {
	AdminStore        adminStore.Store
	SessionStore      sessionStore.Store
	SponsorStore      sponsorStore.Store
	SpeakerStore      speakerStore.Store
	ScheduleStore     scheduleStore.Store
	RegistrationStore registrationStore.Store
	PitchStore        pitchStore.Store
	SubscriberStore   newsletterStore.Store
	AuditStore        auditStore.Store  // optional; nil disables the audit trail
	OutboxStore       outboxStore.Store // optional; nil disables mail retries
}

// Options configures the HTTP surface. Zero values select defaults.
type Options struct {
	CSRFKey                []byte
	SecureCookies          bool
	TrustedOrigins         []string
	SessionTTL             time.Duration
	LockoutThreshold       int
	LockoutDuration        time.Duration
	RateLimitPerMinute     int
	AuthRateLimitPerMinute int
	SlowRequest            time.Duration
	Event                  orchestrators.EventInfo
	Sender                 email.Sender
	Collector              *perf.Collector
	Ping                   func(ctx context.Context) error
	DBStats                func() storage.QueryStats
	Now                    func() time.Time
	GenerateID             func() string
}

func (o *Options) applyDefaults() {
	if o.SessionTTL <= 0 {
		o.SessionTTL = session.DefaultTTL
	}
	if o.LockoutThreshold <= 0 {
		o.LockoutThreshold = admin.DefaultLockoutThreshold
	}
	if o.LockoutDuration <= 0 {
		o.LockoutDuration = admin.DefaultLockoutDuration
	}
	if o.RateLimitPerMinute <= 0 {
		o.RateLimitPerMinute = 600
	}
	if o.AuthRateLimitPerMinute <= 0 {
		o.AuthRateLimitPerMinute = 20
	}
	if o.Sender == nil {
		o.Sender = email.NewNoopSender()
	}
	if o.Collector == nil {
		o.Collector = perf.NewCollector(perf.DefaultRingSize)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.GenerateID == nil {
		o.GenerateID = generateID
	}
}

// app carries the wiring every handler needs.
type app struct {
	stores *Stores
	opts   Options
	outbox *orchestrators.OutboxProcessor
}

// NewMux wires HTTP handlers for the app.
// PRE: every store in s is set; opts.CSRFKey is 32 bytes
func NewMux(s *Stores, opts Options) http.Handler {
	opts.applyDefaults()
	middleware.SecureCookies = opts.SecureCookies
	a := &app{stores: s, opts: opts}
	if s.OutboxStore != nil {
		// Handlers send through the queue; manual retries go to the provider directly.
		a.outbox = orchestrators.NewOutboxProcessor(s.OutboxStore, opts.Sender, opts.Now)
		a.opts.Sender = &orchestrators.QueueingSender{
			Sender:     opts.Sender,
			Store:      s.OutboxStore,
			GenerateID: opts.GenerateID,
			Now:        opts.Now,
		}
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)

	// Timing -> RateLimit -> SecurityHeaders -> CSRF -> Auth -> Mux
	return middleware.Chain(mux,
		middleware.Auth(middleware.ResolverFunc(a.resolveSession)),
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.SecurityHeaders,
		middleware.RateLimit(opts.RateLimitPerMinute),
		middleware.Timing(opts.Collector, opts.SlowRequest),
	)
}

// resolveSession adapts ExecuteResolveSession to the middleware's identity.
func (a *app) resolveSession(ctx context.Context, token string) (middleware.Identity, error) {
	acct, sess, err := orchestrators.ExecuteResolveSession(ctx, token, orchestrators.ResolveSessionDeps{
		SessionStore: a.stores.SessionStore,
		AdminStore:   a.stores.AdminStore,
		Now:          a.opts.Now,
	})
	if err != nil {
		return middleware.Identity{}, err
	}
	return middleware.Identity{
		AccountID:   acct.ID,
		Email:       acct.Email,
		Name:        acct.Name,
		Permissions: acct.Permissions,
		Token:       sess.Token,
		ExpiresAt:   sess.ExpiresAt,
	}, nil
}
