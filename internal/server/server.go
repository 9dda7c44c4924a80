// Package server assembles the HTTP API and runs it.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/config"
	"github.com/funnytourism/tourism-api/internal/notify"
	"github.com/funnytourism/tourism-api/internal/ratelimit"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	notifier   *notify.Service
	closers    []io.Closer
}

// New builds the services described by cfg on top of db. A Redis URL
// switches the contact form limiter from process memory to Redis.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Server, error) {
	s := &Server{cfg: cfg, notifier: notify.FromConfig(cfg.SMTP, cfg.Admin)}

	limiter, err := s.limiter(ctx)
	if err != nil {
		return nil, err
	}

	handler := NewRouter(Deps{
		Config:   cfg,
		DB:       db,
		Sessions: auth.NewSessions(cfg.JWT.Secret, cfg.JWT.TTL, cfg.Cookie.Secure),
		Limiter:  limiter,
		Notifier: s.notifier,
	})
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	return s, nil
}

func (s *Server) limiter(ctx context.Context) (ratelimit.Limiter, error) {
	rl := s.cfg.RateLimit
	policy := ratelimit.Policy{Attempts: rl.Attempts, Window: rl.Window, Block: rl.Block}
	if s.cfg.Redis.URL != "" {
		client, err := ratelimit.NewRedisClient(ctx, s.cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client)
		logrus.Info("rate limiter backed by redis")
		return ratelimit.NewRedis(client, policy, "ratelimit:"), nil
	}
	m := ratelimit.NewMemory(policy, rl.MaxEntries, rl.SweepInterval)
	s.closers = append(s.closers, m)
	return m, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// pending alerts within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", s.httpServer.Addr).Info("server started")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
	}

	logrus.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	s.notifier.Wait()
	s.close()
	return err
}

func (s *Server) close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			logrus.WithError(err).Warn("failed to release resource")
		}
	}
}
