package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var codeTemplate = template.Must(template.New("code").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <h2>{{.Heading}}</h2>
    <p>Hi {{.Name}},</p>
    <p>{{.Intro}}</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
    <p>This code expires in {{.Minutes}} minutes. If you did not request it, you can ignore this e-mail.</p>
  </body>
</html>`))

var noticeTemplate = template.Must(template.New("notice").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #222;">
    <p>Hi {{.Name}},</p>
    <p>{{.Body}}</p>
  </body>
</html>`))

type codeView struct {
	Heading string
	Name    string
	Intro   string
	Code    string
	Minutes int
}

// VerificationEmail renders the e-mail carrying a registration code.
func VerificationEmail(to, name, code string, ttl time.Duration) (Message, error) {
	view := codeView{
		Heading: "Verify your email",
		Name:    name,
		Intro:   "Use the code below to verify your account.",
		Code:    code,
		Minutes: int(ttl.Minutes()),
	}
	return renderCode(to, "Your verification code", view)
}

// PasswordResetEmail renders the e-mail carrying a reset code.
func PasswordResetEmail(to, name, code string, ttl time.Duration) (Message, error) {
	view := codeView{
		Heading: "Reset your password",
		Name:    name,
		Intro:   "Use the code below to choose a new password.",
		Code:    code,
		Minutes: int(ttl.Minutes()),
	}
	return renderCode(to, "Your password reset code", view)
}

// PasswordChangedEmail renders the security notice sent after a password change.
func PasswordChangedEmail(to, name string, at time.Time) (Message, error) {
	body := fmt.Sprintf("The password for your account was changed on %s. If this was not you, reset your password immediately.",
		at.UTC().Format(time.RFC1123))

	var buf bytes.Buffer
	if err := noticeTemplate.Execute(&buf, struct{ Name, Body string }{name, body}); err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Your password was changed",
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Hi %s,\n\n%s\n", name, body),
	}, nil
}

func renderCode(to, subject string, view codeView) (Message, error) {
	var buf bytes.Buffer
	if err := codeTemplate.Execute(&buf, view); err != nil {
		return Message{}, err
	}
	text := fmt.Sprintf("Hi %s,\n\n%s\n\n%s\n\nThis code expires in %d minutes.\n",
		view.Name, view.Intro, view.Code, view.Minutes)
	return Message{To: to, Subject: subject, HTML: buf.String(), Text: text}, nil
}
