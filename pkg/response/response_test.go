package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/jobboard/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseErrorLogsHiddenCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(LoggerKey, logrus.FieldLogger(log))

	appErr := apperror.Validation("the given data was invalid", map[string]string{"body": "request body is malformed"})
	appErr.Err = errors.Join(apperror.ErrValidation, errors.New("unexpected EOF"))
	ResponseError(c, appErr)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotContains(t, rec.Body.String(), "EOF")
	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "request body is malformed", body.Errors["body"])

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Contains(t, entry.Data[logrus.ErrorKey].(error).Error(), "unexpected EOF")
}

func TestResponseErrorHidesServerCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Set(LoggerKey, logrus.FieldLogger(log))

	ResponseError(c, apperror.Storage("failed to save", errors.New("dial tcp: refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "refused")
	assert.Len(t, hook.AllEntries(), 1)
}
