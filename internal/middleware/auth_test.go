package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"anoa.com/jobboard/internal/entity"
	"anoa.com/jobboard/pkg/apperror"
	"anoa.com/jobboard/pkg/logger"
	"anoa.com/jobboard/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[uint]*entity.User

func (s stubUsers) FindByID(_ context.Context, id uint) (*entity.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperror.ErrNotFound
}

func signed(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newEngine(users stubUsers) *gin.Engine {
	return newEngineWith(users, nil)
}

func newEngineWith(users stubUsers, revoked RevokedTokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(users, "secret", revoked)

	r := gin.New()
	r.Use(RequestLogger(logger.Discard()))
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		actor, err := response.GetActor(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID})
	})
	r.GET("/token", m.RequireAuth(), func(c *gin.Context) {
		id, exp := response.GetToken(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "future": exp.After(time.Now())})
	})
	r.GET("/admin", m.RequireAuth(), m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	users := stubUsers{7: {ID: 7, Name: "Ada"}}
	r := newEngine(users)

	rec := get(r, "/me", signed(t, "secret", strconv.Itoa(7), time.Hour))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", signed(t, "other", "7", time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", signed(t, "secret", "7", -time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", signed(t, "secret", "99", time.Hour)).Code)
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	r := newEngine(stubUsers{7: {ID: 7}})

	rec := get(r, "/me?token="+signed(t, "secret", "7", time.Hour), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newEngine(stubUsers{1: {ID: 1, IsAdmin: true}, 2: {ID: 2}})

	assert.Equal(t, http.StatusNoContent, get(r, "/admin", signed(t, "secret", "1", time.Hour)).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", signed(t, "secret", "2", time.Hour)).Code)
}

// stubRevoked denies the listed ids; err is returned for every lookup.
type stubRevoked struct {
	ids map[string]bool
	err error
}

func (s stubRevoked) IsRevoked(_ context.Context, id string) (bool, error) {
	return s.ids[id], s.err
}

func signedWithID(t *testing.T, subject, id string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        id,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestRequireAuthRejectsRevokedToken(t *testing.T) {
	r := newEngineWith(stubUsers{7: {ID: 7}}, stubRevoked{ids: map[string]bool{"gone": true}})

	rec := get(r, "/me", signedWithID(t, "7", "gone"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")

	assert.Equal(t, http.StatusOK, get(r, "/me", signedWithID(t, "7", "fresh")).Code)
	assert.Equal(t, http.StatusOK, get(r, "/me", signed(t, "secret", "7", time.Hour)).Code)
}

func TestRequireAuthAllowsWhenDenyListFails(t *testing.T) {
	r := newEngineWith(stubUsers{7: {ID: 7}}, stubRevoked{err: errors.New("redis: connection refused")})

	assert.Equal(t, http.StatusOK, get(r, "/me", signedWithID(t, "7", "any")).Code)
}

func TestRequireAuthExposesTokenID(t *testing.T) {
	r := newEngine(stubUsers{7: {ID: 7}})

	rec := get(r, "/token", signedWithID(t, "7", "abc"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"abc","future":true}`, rec.Body.String())
}
