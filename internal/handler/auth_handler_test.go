package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/middleware"
	"github.com/noah-isme/student-records-api/internal/models"
	"github.com/noah-isme/student-records-api/internal/repository"
	"github.com/noah-isme/student-records-api/internal/service"
)

func newTestAuthHandler() (*AuthHandler, *service.AuthService) {
	repo := repository.NewMemoryUserRepository()
	svc := service.NewAuthService(repo, nil, zap.NewNop(), service.AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "student-records-api",
	})
	return NewAuthHandler(svc), svc
}

func postJSON(handler func(*gin.Context), target, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return rec
}

func TestAuthHandlerSignupAndLogin(t *testing.T) {
	handler, _ := newTestAuthHandler()

	rec := postJSON(handler.Signup, "/auth/signup",
		`{"email":"admin@example.com","password":"secret123","full_name":"Admin User"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	envelope := decodeEnvelope(t, rec)
	var session models.LoginResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &session))
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	loginRec := postJSON(handler.Login, "/auth/login",
		`{"email":"admin@example.com","password":"secret123"}`)
	assert.Equal(t, http.StatusOK, loginRec.Code)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	handler, _ := newTestAuthHandler()

	rec := postJSON(handler.Login, "/auth/login",
		`{"email":"nobody@example.com","password":"whatever1"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
}

func TestAuthHandlerLoginMalformedPayload(t *testing.T) {
	handler, _ := newTestAuthHandler()

	rec := postJSON(handler.Login, "/auth/login", `{"email":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerRefresh(t *testing.T) {
	handler, svc := newTestAuthHandler()

	session, err := svc.Signup(context.Background(), models.SignupRequest{
		Email: "admin@example.com", Password: "secret123", FullName: "Admin User",
	})
	require.NoError(t, err)

	rec := postJSON(handler.Refresh, "/auth/refresh",
		`{"refresh_token":"`+session.RefreshToken+`"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	var refreshed models.RefreshTokenResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &refreshed))
	assert.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)
}

func TestAuthHandlerLogout(t *testing.T) {
	handler, svc := newTestAuthHandler()

	session, err := svc.Signup(context.Background(), models.SignupRequest{
		Email: "admin@example.com", Password: "secret123", FullName: "Admin User",
	})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout",
		strings.NewReader(`{"refresh_token":"`+session.RefreshToken+`"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: session.User.ID})

	handler.Logout(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthHandlerLogoutWithoutClaims(t *testing.T) {
	handler, _ := newTestAuthHandler()

	rec := postJSON(handler.Logout, "/auth/logout", `{"refresh_token":"whatever"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	handler, _ := newTestAuthHandler()

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: "user-1", Email: "admin@example.com", FullName: "Admin User",
	})

	handler.Me(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	var info models.UserInfo
	require.NoError(t, json.Unmarshal(envelope.Data, &info))
	assert.Equal(t, "user-1", info.ID)
	assert.Equal(t, "admin@example.com", info.Email)
}
