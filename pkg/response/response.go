package response

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	ActorKey  = "actor"
	UserIDKey = "user_id"
	LoggerKey = "logger"

	TokenIDKey     = "token_id"
	TokenExpiryKey = "token_expires_at"
)

// GetActor retrieves the authenticated user from the context
func GetActor(c *gin.Context) (*entity.User, error) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return nil, apperror.ErrUnauthorized
	}

	actor, ok := value.(*entity.User)
	if !ok || actor == nil {
		return nil, apperror.ErrUnauthorized
	}

	return actor, nil
}

// GetToken returns the id and expiry of the bearer token that authenticated
// the request. The id is empty for tokens issued without one.
func GetToken(c *gin.Context) (string, time.Time) {
	return c.GetString(TokenIDKey), c.GetTime(TokenExpiryKey)
}

// Logger returns the request-scoped entry set by the request logger, or the
// standard logger outside of a request.
func Logger(c *gin.Context) logrus.FieldLogger {
	if value, ok := c.Get(LoggerKey); ok {
		if l, ok := value.(logrus.FieldLogger); ok {
			return l
		}
	}
	return logrus.StandardLogger()
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code >= http.StatusInternalServerError {
		Logger(c).WithError(err).Error("internal error")
		message := "server error"
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Message != "" {
			message = appErr.Message
		}
		c.JSON(code, gin.H{"message": message})
		return
	}

	body := gin.H{"message": err.Error()}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
		if appErr.Err != nil {
			Logger(c).WithError(appErr.Err).WithField("status", code).Debug("request rejected")
		}
	}
	c.JSON(code, body)
}

// Message writes a {"message": ...} body.
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}

// ParamID parses a numeric path parameter. Anything that is not a positive
// integer is answered with 404, since no record can have that id.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		Message(c, http.StatusNotFound, "resource not found")
		return 0, false
	}
	return uint(id), true
}
