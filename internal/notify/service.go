package notify

import (
	"context"
	"sync"

	"github.com/funnytourism/tourism-api/internal/config"
	"github.com/sirupsen/logrus"
)

// Service sends customer emails and fans admin alerts out to the admin
// mailbox and the optional webhook.
type Service struct {
	Mailer     Mailer
	AdminEmail string
	Webhook    *Webhook

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func New(mailer Mailer, adminEmail string, webhook *Webhook) *Service {
	return &Service{Mailer: mailer, AdminEmail: adminEmail, Webhook: webhook}
}

// FromConfig picks the SMTP mailer when mail is enabled.
func FromConfig(smtp config.SMTPConfig, admin config.AdminConfig) *Service {
	var m Mailer = Noop{}
	if smtp.Enabled {
		m = NewSMTPMailer(smtp)
	}
	var wh *Webhook
	if admin.WebhookURL != "" {
		wh = NewWebhook(admin.WebhookURL)
	}
	return New(m, admin.Email, wh)
}

func (s *Service) Send(ctx context.Context, to, subject, body string) error {
	return s.Mailer.Send(ctx, Message{To: to, Subject: subject, Body: body})
}

// Go runs fn in the background with a context that outlives ctx. Wait
// blocks until every task started this way has finished. Once Wait has been
// called, fn runs on the caller's goroutine instead.
func (s *Service) Go(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		fn(ctx)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

// AdminAlert returns immediately; delivery happens in the background and
// failures are only logged.
func (s *Service) AdminAlert(ctx context.Context, subject, body string) {
	s.Go(ctx, func(ctx context.Context) {
		if s.AdminEmail != "" {
			if err := s.Send(ctx, s.AdminEmail, subject, body); err != nil {
				logrus.WithError(err).WithField("subject", subject).Error("failed to email admin alert")
			}
		}
		if s.Webhook != nil {
			if err := s.Webhook.Post(ctx, subject, body); err != nil {
				logrus.WithError(err).WithField("subject", subject).Error("failed to post admin alert")
			}
		}
	})
}

// Wait blocks until pending background work is done. Work submitted after
// Wait starts runs synchronously.
func (s *Service) Wait() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.wg.Wait()
}
