package service

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strconv"
	"strings"

	"anoa.com/jobboard/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

const jobsIndex = "jobs"

// ErrUnavailable is returned by Search when no search engine is configured.
// Callers fall back to database filtering.
var ErrUnavailable = errors.New("search engine not configured")

// JobIndex keeps a full-text copy of job listings.
type JobIndex interface {
	Index(ctx context.Context, job *entity.Job) error
	Remove(ctx context.Context, jobID uint) error
	// Search returns matching job ids, best match first.
	Search(ctx context.Context, query string, limit int64) ([]uint, error)
}

type meiliJobIndex struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       logrus.FieldLogger
}

// NewMeiliJobIndex configures the jobs index settings. Settings failures are
// logged only; indexing still works with the engine defaults.
func NewMeiliJobIndex(client meilisearch.ServiceManager, log logrus.FieldLogger) JobIndex {
	idx := &meiliJobIndex{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log.WithField("index", jobsIndex),
	}
	idx.initIndex()
	return idx
}

func (s *meiliJobIndex) initIndex() {
	filterable := []any{"type", "category", "complete", "employer_id"}
	if _, err := s.client.Index(jobsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.WithError(err).Warn("failed to update filterable attributes")
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(jobsIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.WithError(err).Warn("failed to update sortable attributes")
	}
}

type jobDoc struct {
	ID          uint   `json:"id"`
	EmployerID  uint   `json:"employer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CompanyName string `json:"company_name"`
	Location    string `json:"location"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Complete    bool   `json:"complete"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *meiliJobIndex) cleanText(content string) string {
	for _, tag := range []string{"</p>", "<br>", "<br/>", "</li>", "</div>"} {
		content = strings.ReplaceAll(content, tag, " ")
	}
	return strings.Join(strings.Fields(html.UnescapeString(s.sanitizer.Sanitize(content))), " ")
}

func (s *meiliJobIndex) Index(_ context.Context, job *entity.Job) error {
	doc := jobDoc{
		ID:          job.ID,
		EmployerID:  job.EmployerID,
		Title:       job.Title,
		Description: s.cleanText(job.Description),
		CompanyName: job.CompanyName,
		Location:    job.Location,
		Type:        string(job.Type),
		Complete:    job.Complete,
		CreatedAt:   job.CreatedAt.Unix(),
	}
	if job.Category != nil {
		doc.Category = *job.Category
	}

	primaryKey := "id"
	task, err := s.client.Index(jobsIndex).AddDocuments([]jobDoc{doc}, &primaryKey)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"job_id": job.ID, "task_uid": task.TaskUID}).Debug("job indexed")
	return nil
}

func (s *meiliJobIndex) Remove(_ context.Context, jobID uint) error {
	_, err := s.client.Index(jobsIndex).DeleteDocument(strconv.FormatUint(uint64(jobID), 10))
	return err
}

func (s *meiliJobIndex) Search(_ context.Context, query string, limit int64) ([]uint, error) {
	raw, err := s.client.Index(jobsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                limit,
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Hits []struct {
			ID uint `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

type noopJobIndex struct{}

// NewNoopJobIndex is used when Meilisearch is not configured.
func NewNoopJobIndex() JobIndex {
	return noopJobIndex{}
}

func (noopJobIndex) Index(context.Context, *entity.Job) error { return nil }

func (noopJobIndex) Remove(context.Context, uint) error { return nil }

func (noopJobIndex) Search(context.Context, string, int64) ([]uint, error) {
	return nil, ErrUnavailable
}
