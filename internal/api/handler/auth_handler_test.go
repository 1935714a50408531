package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"minibank/internal/api/handler"
	"minibank/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestGenerateBearerToken(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Auth.JWTSecret = "test-secret"
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := handler.NewAuthHandler(cfg, logger)

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte(`{"username":"teller"}`)))
		rec := httptest.NewRecorder()

		h.GenerateBearerToken(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp["token"], "Bearer "))

		tokenString := strings.TrimPrefix(resp["token"], "Bearer ")
		parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		assert.NoError(t, err)
		assert.True(t, parsed.Valid)

		claims, ok := parsed.Claims.(jwt.MapClaims)
		assert.True(t, ok)
		assert.Equal(t, "teller", claims["username"])
	})

	t.Run("missing username", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()

		h.GenerateBearerToken(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte(`not-json`)))
		rec := httptest.NewRecorder()

		h.GenerateBearerToken(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
