package authn

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calerrors "calendar-backend/internal/errors"
)

func TestMiddlewareRejectsRequestWithoutCredential(t *testing.T) {
	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { handlerCalled = true })

	mw := Middleware(StaticVerifier{}, nil)(next)
	req := httptest.NewRequest(http.MethodGet, "/calendars/abc", nil)
	rec := httptest.NewRecorder()

	mw.ServeHTTP(rec, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewarePassesUserIDToDownstreamContext(t *testing.T) {
	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := calerrors.UserIDFromContext(r.Context())
		require.True(t, ok)
		seenUserID = id
		w.WriteHeader(http.StatusOK)
	})

	mw := Middleware(StaticVerifier{}, nil)(next)
	req := httptest.NewRequest(http.MethodGet, "/calendars/abc", nil)
	req.Header.Set("X-User-Id", "user-42")
	rec := httptest.NewRecorder()

	mw.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", seenUserID)
}
