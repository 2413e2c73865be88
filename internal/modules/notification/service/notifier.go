package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/pkg/mailer"
	"github.com/sirupsen/logrus"
)

type Event string

const (
	EventEmployerRoleRequested Event = "employer_role_requested"
	EventJobReopened           Event = "job_reopened"
)

// EmployerRoleRequest is the payload of EventEmployerRoleRequested.
type EmployerRoleRequest struct {
	User    *entity.User
	Message string
}

// JobReopened is the payload of EventJobReopened. Recipients are the users
// who saved the job.
type JobReopened struct {
	Job        *entity.Job
	Recipients []*entity.User
}

// Notifier is the outbound side-effect hook. Callers never depend on how a
// notification is delivered.
type Notifier interface {
	Notify(ctx context.Context, event Event, payload any) error
}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type mailNotifier struct {
	mailer     mailer.Mailer
	adminEmail string
	appURL     string
	log        logrus.FieldLogger
}

// NewMailNotifier delivers events by email. Employer role requests go to
// adminEmail; job alerts go to each recipient separately.
func NewMailNotifier(m mailer.Mailer, adminEmail, appURL string, log logrus.FieldLogger) Notifier {
	return &mailNotifier{mailer: m, adminEmail: adminEmail, appURL: appURL, log: log}
}

func (n *mailNotifier) Notify(ctx context.Context, event Event, payload any) error {
	switch event {
	case EventEmployerRoleRequested:
		p, ok := payload.(EmployerRoleRequest)
		if !ok {
			return fmt.Errorf("notify %s: unexpected payload %T", event, payload)
		}
		if n.adminEmail == "" {
			return errors.New("notify: ADMIN_EMAIL is not configured")
		}
		body, err := render("employer_request.html", p)
		if err != nil {
			return err
		}
		return n.mailer.Send([]string{n.adminEmail}, "New Employer Role Request", body)

	case EventJobReopened:
		p, ok := payload.(JobReopened)
		if !ok {
			return fmt.Errorf("notify %s: unexpected payload %T", event, payload)
		}
		body, err := render("job_alert.html", map[string]any{
			"Job":    p.Job,
			"JobURL": fmt.Sprintf("%s/jobs/%d", n.appURL, p.Job.ID),
		})
		if err != nil {
			return err
		}

		subject := fmt.Sprintf("Job Alert: %s is Hiring Again!", p.Job.Title)
		var errs []error
		for _, u := range p.Recipients {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := n.mailer.Send([]string{u.Email}, subject, body); err != nil {
				n.log.WithError(err).WithField("user_id", u.ID).Warn("job alert not delivered")
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)

	default:
		return fmt.Errorf("notify: unknown event %q", event)
	}
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

type logNotifier struct {
	log logrus.FieldLogger
}

// NewLogNotifier only records events. Used when SMTP is not configured.
func NewLogNotifier(log logrus.FieldLogger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(_ context.Context, event Event, payload any) error {
	entry := n.log.WithField("event", event)
	switch p := payload.(type) {
	case EmployerRoleRequest:
		entry = entry.WithField("user_id", p.User.ID)
	case JobReopened:
		entry = entry.WithFields(logrus.Fields{"job_id": p.Job.ID, "recipients": len(p.Recipients)})
	}
	entry.Info("notification")
	return nil
}
