package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	sent    []sentMail
	failFor string
}

func (m *fakeMailer) Send(to []string, subject, body string) error {
	if m.failFor != "" && to[0] == m.failFor {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func TestMailNotifierEmployerRequest(t *testing.T) {
	m := &fakeMailer{}
	n := NewMailNotifier(m, "admin@example.com", "https://jobs.example.com", logger.Discard())

	err := n.Notify(context.Background(), EventEmployerRoleRequested, EmployerRoleRequest{
		User:    &entity.User{ID: 4, Name: "Ada <script>", Email: "ada@example.com"},
		Message: "Please let me post jobs for Acme",
	})
	require.NoError(t, err)

	require.Len(t, m.sent, 1)
	assert.Equal(t, []string{"admin@example.com"}, m.sent[0].to)
	assert.Contains(t, m.sent[0].body, "Please let me post jobs for Acme")
	assert.Contains(t, m.sent[0].body, "Ada &lt;script&gt;")
}

func TestMailNotifierJobReopenedSendsEachRecipient(t *testing.T) {
	m := &fakeMailer{failFor: "b@example.com"}
	n := NewMailNotifier(m, "", "https://jobs.example.com", logger.Discard())

	err := n.Notify(context.Background(), EventJobReopened, JobReopened{
		Job: &entity.Job{ID: 9, Title: "Go Developer", CompanyName: "Acme", Location: "Remote"},
		Recipients: []*entity.User{
			{ID: 1, Email: "a@example.com"},
			{ID: 2, Email: "b@example.com"},
			{ID: 3, Email: "c@example.com"},
		},
	})
	assert.Error(t, err)

	require.Len(t, m.sent, 2)
	assert.Equal(t, "Job Alert: Go Developer is Hiring Again!", m.sent[0].subject)
	assert.True(t, strings.Contains(m.sent[0].body, "https://jobs.example.com/jobs/9"))
}

func TestMailNotifierRejectsWrongPayload(t *testing.T) {
	n := NewMailNotifier(&fakeMailer{}, "admin@example.com", "", logger.Discard())

	assert.Error(t, n.Notify(context.Background(), EventJobReopened, "oops"))
	assert.Error(t, n.Notify(context.Background(), Event("other"), nil))
}

func TestLogNotifierNeverFails(t *testing.T) {
	n := NewLogNotifier(logger.Discard())
	assert.NoError(t, n.Notify(context.Background(), EventJobReopened, JobReopened{Job: &entity.Job{ID: 1}}))
}
