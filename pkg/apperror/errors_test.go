package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("job not found"), http.StatusNotFound},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"conflict", Conflict("already applied"), http.StatusConflict},
		{"validation", Validation("bad", map[string]string{"title": "required"}), http.StatusUnprocessableEntity},
		{"storage", Storage("could not save", errors.New("disk full")), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("loading: %w", ErrNotFound), http.StatusNotFound},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestStorageKeepsCauseButHidesIt(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("could not schedule interview", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "could not schedule interview", err.Error())
}
