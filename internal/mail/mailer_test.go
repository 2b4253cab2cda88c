package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPSenderBuildsHeaders(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPSender{dialer: d, from: "shop@example.com", fromName: "Shop"}

	msg, err := VerificationEmail("a@x.com", "A", "123456", 10*time.Minute)
	require.NoError(t, err)
	require.NoError(t, s.Send(context.Background(), msg))

	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"a@x.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Your verification code"}, d.sent[0].GetHeader("Subject"))
	assert.Equal(t, []string{`"Shop" <shop@example.com>`}, d.sent[0].GetHeader("From"))
}

func TestSMTPSenderWrapsFailure(t *testing.T) {
	cause := errors.New("connection refused")
	s := &SMTPSender{dialer: &recordingDialer{err: cause}, from: "shop@example.com"}

	err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "x", Text: "y"})
	assert.ErrorIs(t, err, cause)
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPSender{dialer: d}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Send(ctx, Message{To: "a@x.com"}), context.Canceled)
	assert.Empty(t, d.sent)
}

func TestTemplatesCarryCode(t *testing.T) {
	msg, err := PasswordResetEmail("a@x.com", "<b>A</b>", "987654", 10*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "987654")
	assert.Contains(t, msg.HTML, "&lt;b&gt;A&lt;/b&gt;")
	assert.Contains(t, msg.Text, "expires in 10 minutes")

	notice, err := PasswordChangedEmail("a@x.com", "A", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, notice.Text, "02 Jan 2026")
}

func TestLogSenderNeverFails(t *testing.T) {
	assert.NoError(t, NewLogSender(zap.NewNop()).Send(context.Background(), Message{To: "a@x.com"}))
}
