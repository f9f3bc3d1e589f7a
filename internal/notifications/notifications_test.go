package notifications

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	calls int
	err   error
	block bool
}

func (f *fakeMailer) Send(ctx context.Context, msg Message) error {
	f.calls++
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func TestProtectedMailer_OpensAfterThreshold(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inner := &fakeMailer{err: errors.New("smtp down")}

	m := NewProtectedMailer(inner, ProtectedMailerConfig{FailureThreshold: 2, Cooldown: time.Minute})
	m.now = func() time.Time { return now }

	ctx := context.Background()
	msg := Message{To: "a@b.co", Subject: "s", Text: "t"}

	assert.Error(t, m.Send(ctx, msg))
	assert.Error(t, m.Send(ctx, msg))
	assert.ErrorIs(t, m.Send(ctx, msg), ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls)

	// half-open trial succeeds and closes the circuit
	now = now.Add(time.Minute)
	inner.err = nil
	require.NoError(t, m.Send(ctx, msg))
	require.NoError(t, m.Send(ctx, msg))
	assert.Equal(t, 4, inner.calls)
}

func TestProtectedMailer_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inner := &fakeMailer{err: errors.New("smtp down")}

	m := NewProtectedMailer(inner, ProtectedMailerConfig{FailureThreshold: 1, Cooldown: time.Minute})
	m.now = func() time.Time { return now }

	ctx := context.Background()
	assert.Error(t, m.Send(ctx, Message{}))

	now = now.Add(time.Minute)
	assert.Error(t, m.Send(ctx, Message{}))
	assert.ErrorIs(t, m.Send(ctx, Message{}), ErrCircuitOpen)
}

func TestProtectedMailer_Timeout(t *testing.T) {
	m := NewProtectedMailer(&fakeMailer{block: true}, ProtectedMailerConfig{Timeout: 10 * time.Millisecond})
	assert.ErrorIs(t, m.Send(context.Background(), Message{}), context.DeadlineExceeded)
}

func TestSMTPMailer_RendersMessage(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.local", Port: 2525, FromName: "BootcampHub", FromAddr: "noreply@bootcamphub.local"})

	var gotAddr string
	var gotTo []string
	var gotBody string
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, string(msg)
		return nil
	}

	err := m.Send(context.Background(), Message{To: "jane@example.com", Subject: "Password reset token", Text: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, []string{"jane@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotBody, `From: "BootcampHub" <noreply@bootcamphub.local>`))
	assert.Contains(t, gotBody, "Subject: Password reset token\r\n")
	assert.True(t, strings.HasSuffix(gotBody, "\r\n\r\nhello"))
}

func TestSMTPMailer_Errors(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.local", Port: 2525})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("421 busy") }

	assert.Error(t, m.Send(context.Background(), Message{To: "not-an-email"}))
	assert.ErrorContains(t, m.Send(context.Background(), Message{To: "a@b.co"}), "421 busy")
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(nil)
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@b.co"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, m.Send(ctx, Message{To: "a@b.co"}))
}
