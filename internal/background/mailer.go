package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/olholv/contactbook/internal/services"
	pkglogger "github.com/olholv/contactbook/pkg/logger"
)

const sendTimeout = 30 * time.Second

type mailKind int

const (
	mailConfirmation mailKind = iota
	mailPasswordReset
)

type mailJob struct {
	kind  mailKind
	email string
	token string
}

// Mailer is a fire-and-forget mail queue. Enqueue never blocks the
// triggering request and send failures are logged, never propagated or
// retried here.
type Mailer struct {
	emailService services.EmailService
	queue        chan mailJob
	logger       *slog.Logger
	done         chan struct{}
}

// NewMailer creates a mail queue with the given buffer size.
func NewMailer(emailService services.EmailService, queueSize int, logger *slog.Logger) *Mailer {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Mailer{
		emailService: emailService,
		queue:        make(chan mailJob, queueSize),
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// Start runs the send loop until ctx is cancelled. Jobs still queued at
// shutdown are dropped.
func (m *Mailer) Start(ctx context.Context) {
	defer close(m.done)

	for {
		select {
		case job := <-m.queue:
			m.deliver(ctx, job)
		case <-ctx.Done():
			m.logger.Info("mailer stopped")
			return
		}
	}
}

// Wait blocks until the send loop has exited.
func (m *Mailer) Wait() {
	<-m.done
}

// EnqueueConfirmation queues an email-confirmation send.
func (m *Mailer) EnqueueConfirmation(email, token string) {
	m.enqueue(mailJob{kind: mailConfirmation, email: email, token: token})
}

// EnqueuePasswordReset queues a password-reset send.
func (m *Mailer) EnqueuePasswordReset(email, token string) {
	m.enqueue(mailJob{kind: mailPasswordReset, email: email, token: token})
}

func (m *Mailer) enqueue(job mailJob) {
	select {
	case m.queue <- job:
	default:
		// Queue full: drop rather than block the request
		m.logger.Warn("mail queue full, dropping message",
			slog.String("email", pkglogger.SanitizedEmail(job.email)))
	}
}

func (m *Mailer) deliver(ctx context.Context, job mailJob) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var err error
	switch job.kind {
	case mailConfirmation:
		err = m.emailService.SendConfirmationEmail(sendCtx, job.email, job.token)
	case mailPasswordReset:
		err = m.emailService.SendPasswordResetEmail(sendCtx, job.email, job.token)
	}

	if err != nil {
		m.logger.Error("background mail send failed",
			slog.String("email", pkglogger.SanitizedEmail(job.email)),
			slog.Any("error", err))
	}
}
