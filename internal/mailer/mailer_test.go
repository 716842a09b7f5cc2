package mailer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"gripulse/internal/config"
	apierrors "gripulse/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMailer() *Mailer {
	return NewMailer(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Sender:   "reports@example.com",
		Password: "secret",
	}, discardLogger(), nil)
}

func TestSendReportNotConfigured(t *testing.T) {
	m := NewMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, discardLogger(), nil)
	assert.False(t, m.Configured())

	err := m.SendReport(context.Background(), SendRequest{To: "a@example.com"}, nil)
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "not configured")
}

func TestSendReport(t *testing.T) {
	m := testMailer()

	var sent *mail.Msg
	m.send = func(_ context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	req := SendRequest{
		To:       "ceo@example.com",
		Cc:       "esg@example.com",
		Year:     2023,
		Filename: "Sustainability_GRI_Report_2023.pdf",
	}
	require.NoError(t, m.SendReport(context.Background(), req, []byte("%PDF-1.4")))

	require.NotNil(t, sent)
	subjects := sent.GetGenHeader(mail.HeaderSubject)
	require.Len(t, subjects, 1)
	assert.Equal(t, "GRI Sustainability Report 2023", subjects[0])
	assert.Len(t, sent.GetAttachments(), 1)
}

func TestSendReportInvalidRecipient(t *testing.T) {
	m := testMailer()
	m.send = func(context.Context, *mail.Msg) error {
		t.Fatal("send should not be reached")
		return nil
	}

	err := m.SendReport(context.Background(), SendRequest{To: "not-an-address"}, nil)
	assert.Error(t, err)
}

func TestReportBody(t *testing.T) {
	body := reportBody(2022)
	assert.Contains(t, body, "GRI Sustainability Report for 2022")
	assert.Contains(t, body, "Best regards")
}
