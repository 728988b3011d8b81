// Package mailer delivers outbound platform email: magic-link logins and
// review-status notifications. Delivery is best effort, no queue or retry;
// callers decide whether a failure is fatal for their operation.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

// Mailer sends a single HTML email. Implementations must be safe for
// concurrent use; it is injected into services so tests can substitute a
// recording double.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

var magicLinkTmpl = template.Must(template.New("magiclink").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Welcome to Resume Review Platform</h2>
  <p>Hello {{.Name}},</p>
  <p>Click the link below to login to your account:</p>
  <a href="{{.Link}}"
     style="display: inline-block; padding: 12px 24px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0;">
    Login to Platform
  </a>
  <p style="color: #666; font-size: 14px;">
    This link will expire in {{.Minutes}} minutes for security reasons.
  </p>
  <p style="color: #666; font-size: 14px;">
    If you didn't request this login, please ignore this email.
  </p>
</div>
`))

var statusTmpl = template.Must(template.New("status").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Resume Status Update</h2>
  <p>Hello {{.Name}},</p>
  <p>{{.Message}}</p>
  {{if .Notes}}<p><strong>Review Notes:</strong> {{.Notes}}</p>{{end}}
  <p>You can view your resume status by logging into the platform.</p>
  <a href="{{.DashboardURL}}"
     style="display: inline-block; padding: 12px 24px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0;">
    View Dashboard
  </a>
</div>
`))

// MagicLinkEmail renders the login email for the given display name and link.
func MagicLinkEmail(name, link string, ttl time.Duration) (subject, body string, err error) {
	var buf bytes.Buffer
	data := struct {
		Name    string
		Link    string
		Minutes int
	}{name, link, int(ttl.Minutes())}
	if err := magicLinkTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render magic link email: %w", err)
	}
	return "Login to Resume Review Platform", buf.String(), nil
}

var statusMessages = map[string]string{
	"approved":       "Congratulations! Your resume has been approved.",
	"needs_revision": "Your resume needs some revisions before approval.",
	"rejected":       "Unfortunately, your resume has been rejected.",
	"under_review":   "Your resume is currently under review.",
}

// StatusEmail renders the review-status notification email.
func StatusEmail(name, status, notes, dashboardURL string) (subject, body string, err error) {
	msg, ok := statusMessages[status]
	if !ok {
		msg = "Your resume status has been updated."
	}
	var buf bytes.Buffer
	data := struct {
		Name         string
		Message      string
		Notes        string
		DashboardURL string
	}{name, msg, notes, dashboardURL}
	if err := statusTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render status email: %w", err)
	}
	subject = fmt.Sprintf("Resume Status Update: %s", statusTitle(status))
	return subject, buf.String(), nil
}

func statusTitle(status string) string {
	out := make([]rune, 0, len(status))
	for _, r := range status {
		if r == '_' {
			out = append(out, ' ')
			continue
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
