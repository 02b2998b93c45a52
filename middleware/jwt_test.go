package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, key []byte, header string) (*httptest.ResponseRecorder, int64) {
	t.Helper()
	var seen int64
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		seen = MemberID(c)
		return c.NoContent(http.StatusOK)
	}, JWT(key))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestJWT(t *testing.T) {
	key := []byte("secret")
	token, err := NewToken(42, "runner@example.com", key, time.Hour)
	require.NoError(t, err)
	expired, err := NewToken(42, "runner@example.com", key, -time.Hour)
	require.NoError(t, err)
	forged, err := NewToken(42, "runner@example.com", []byte("other"), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		member int64
	}{
		{"raw token", token, http.StatusOK, 42},
		{"bearer token", "Bearer " + token, http.StatusOK, 42},
		{"missing", "", http.StatusBadRequest, 0},
		{"expired", expired, http.StatusUnauthorized, 0},
		{"wrong key", forged, http.StatusUnauthorized, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, member := serve(t, key, tt.header)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.member, member)
		})
	}
}
