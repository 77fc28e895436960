package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctOP-IIITH/backend/internal/domain"
	"github.com/ctOP-IIITH/backend/internal/service"
)

// stubAuth fakes token verification; only Verify is exercised here.
type stubAuth struct {
	service.AuthService
	principal *service.Principal
	err       error
}

func (s *stubAuth) Verify(context.Context, string) (*service.Principal, error) {
	return s.principal, s.err
}

func TestRequireRejectsMissingToken(t *testing.T) {
	auth := NewAuth(&stubAuth{})
	handler := auth.Require(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nodes", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestRequirePutsPrincipalOnContext(t *testing.T) {
	auth := NewAuth(&stubAuth{principal: &service.Principal{UserID: 7, UserType: domain.RoleUser}})

	var got *service.Principal
	handler := auth.Require(func(w http.ResponseWriter, r *http.Request) {
		got = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.UserID)
}

func TestRequireRejectsRevokedToken(t *testing.T) {
	auth := NewAuth(&stubAuth{err: &service.Error{Kind: service.KindUnauthorized, Message: "Session has been revoked"}})
	handler := auth.Require(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nodes", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	userAuth := NewAuth(&stubAuth{principal: &service.Principal{UserID: 7, UserType: domain.RoleUser}})
	adminAuth := NewAuth(&stubAuth{principal: &service.Principal{UserID: 1, UserType: domain.RoleAdmin}})

	handler := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verticals", nil)
	req.Header.Set("Authorization", "Bearer t")

	rec := httptest.NewRecorder()
	userAuth.RequireAdmin(handler)(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	adminAuth.RequireAdmin(handler)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		kind   service.Kind
		status int
	}{
		{service.KindNotFound, http.StatusNotFound},
		{service.KindConflict, http.StatusConflict},
		{service.KindValidation, http.StatusBadRequest},
		{service.KindUnauthorized, http.StatusUnauthorized},
		{service.KindRemoteError, http.StatusBadGateway},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, &service.Error{Kind: tc.kind, Message: "boom"})
		assert.Equal(t, tc.status, rec.Code)
	}

	// untagged errors stay opaque
	rec := httptest.NewRecorder()
	writeError(rec, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "assert.AnError")
}
