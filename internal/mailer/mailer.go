package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"gripulse/internal/config"
	apierrors "gripulse/internal/errors"
	"gripulse/internal/infrastructure"
)

// SendRequest describes one outbound report email. To is required, Cc
// and Bcc are optional single addresses.
type SendRequest struct {
	To       string `json:"to" validate:"required,email"`
	Cc       string `json:"cc,omitempty" validate:"omitempty,email"`
	Bcc      string `json:"bcc,omitempty" validate:"omitempty,email"`
	Year     int    `json:"year"`
	Filename string `json:"filename" validate:"required,filename"`
}

// Mailer delivers generated report PDFs over SMTP with STARTTLS.
type Mailer struct {
	cfg     config.SMTPConfig
	logger  *slog.Logger
	metrics *infrastructure.AppMetrics

	// send is swapped in tests to avoid a live SMTP dial.
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewMailer creates a mailer from the SMTP configuration.
func NewMailer(cfg config.SMTPConfig, logger *slog.Logger, metrics *infrastructure.AppMetrics) *Mailer {
	m := &Mailer{
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "mailer")),
		metrics: metrics,
	}
	m.send = m.dialAndSend
	return m
}

// Configured reports whether sender credentials are present.
func (m *Mailer) Configured() bool {
	return m.cfg.Sender != "" && m.cfg.Password != ""
}

// SendReport emails the given PDF bytes as an attachment. Missing
// credentials fail before any dial.
func (m *Mailer) SendReport(ctx context.Context, req SendRequest, pdf []byte) error {
	if !m.Configured() {
		return apierrors.NewEmailError("email sender or password not configured", nil)
	}

	msg, err := m.buildMessage(req, pdf)
	if err != nil {
		return apierrors.NewEmailError("failed to build message", err)
	}

	if err := m.send(ctx, msg); err != nil {
		return apierrors.NewEmailError("failed to send report email", err)
	}

	m.logger.InfoContext(ctx, "report email sent",
		slog.String("to", req.To),
		slog.String("file", req.Filename))
	if m.metrics != nil {
		m.metrics.EmailsSent.Add(ctx, 1)
	}
	return nil
}

func (m *Mailer) buildMessage(req SendRequest, pdf []byte) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(req.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if req.Cc != "" {
		if err := msg.Cc(req.Cc); err != nil {
			return nil, fmt.Errorf("invalid cc address: %w", err)
		}
	}
	if req.Bcc != "" {
		if err := msg.Bcc(req.Bcc); err != nil {
			return nil, fmt.Errorf("invalid bcc address: %w", err)
		}
	}

	msg.Subject(fmt.Sprintf("GRI Sustainability Report %d", req.Year))
	msg.SetBodyString(mail.TypeTextPlain, reportBody(req.Year))
	if err := msg.AttachReader(req.Filename, bytes.NewReader(pdf)); err != nil {
		return nil, fmt.Errorf("failed to attach report: %w", err)
	}
	return msg, nil
}

func reportBody(year int) string {
	return fmt.Sprintf(`Hello,

Attached is the GRI Sustainability Report for %d.

Best regards,
Sustainability AI Agent
`, year)
}

func (m *Mailer) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Sender),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
