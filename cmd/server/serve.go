package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"techday/internal/adapters/email"
	web "techday/internal/adapters/http"
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
	"techday/internal/config"
)

const (
	// sessionSweepInterval is how often expired and revoked sessions are purged.
	sessionSweepInterval = 15 * time.Minute
	// outboxInterval is how often queued mail is retried.
	outboxInterval = time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	timedDB := storage.NewTimedDB(db, cfg.SlowQuery)
	sessions := sessionStore.NewSQLiteStore(timedDB)
	mailQueue := outboxStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AdminStore:        adminStore.NewSQLiteStore(timedDB),
		SessionStore:      sessions,
		SponsorStore:      sponsorStore.NewSQLiteStore(timedDB),
		SpeakerStore:      speakerStore.NewSQLiteStore(timedDB),
		ScheduleStore:     scheduleStore.NewSQLiteStore(timedDB),
		RegistrationStore: registrationStore.NewSQLiteStore(timedDB),
		PitchStore:        pitchStore.NewSQLiteStore(timedDB),
		SubscriberStore:   newsletterStore.NewSQLiteStore(timedDB),
		AuditStore:        auditStore.NewSQLiteStore(timedDB),
		OutboxStore:       mailQueue,
	}

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		return err
	}
	if csrfKey == nil {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			return err
		}
		slog.Warn("csrf_key_generated", "note", "form tokens reset on restart; set TECHDAY_CSRF_KEY")
	}

	var sender email.Sender
	if cfg.ResendKey != "" {
		sender = email.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = email.NewNoopSender()
		if cfg.Production() {
			slog.Warn("email_sender_configured", "provider", "noop", "note", "TECHDAY_RESEND_KEY is not set, mail is DISABLED")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	handler := web.NewMux(stores, web.Options{
		CSRFKey:                csrfKey,
		SecureCookies:          cfg.Production(),
		TrustedOrigins:         cfg.TrustedOrigins,
		SessionTTL:             cfg.SessionTTL,
		LockoutThreshold:       cfg.LockoutAttempts,
		LockoutDuration:        cfg.LockoutDuration,
		RateLimitPerMinute:     cfg.RateLimitPerMinute,
		AuthRateLimitPerMinute: cfg.AuthRateLimitPerMinute,
		SlowRequest:            cfg.SlowRequest,
		Event: orchestrators.EventInfo{
			Name:  cfg.EventName,
			Date:  cfg.EventDate,
			Venue: cfg.EventVenue,
		},
		Sender:    sender,
		Collector: perf.NewCollector(perf.DefaultRingSize),
		Ping:      db.PingContext,
		DBStats:   timedDB.Stats,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sweepSessions(ctx, sessions, sessionSweepInterval)
		return nil
	})
	g.Go(func() error {
		orchestrators.NewOutboxProcessor(mailQueue, sender, time.Now).Run(ctx, outboxInterval)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("server_stopping")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// sessionSweeper is the part of the session store the sweep loop needs.
type sessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// sweepSessions purges dead sessions every interval until ctx is done.
func sweepSessions(ctx context.Context, store sessionSweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx, time.Now())
			if err != nil {
				slog.Error("session_sweep_failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("auth_event", "event", "sessions_purged", "count", n)
			}
		}
	}
}
