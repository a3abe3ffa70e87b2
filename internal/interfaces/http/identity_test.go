package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

func TestNewIdentityVerifierDisabled(t *testing.T) {
	assert.Nil(t, NewIdentityVerifier(""))
}

func TestIdentityVerifier(t *testing.T) {
	now := time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC)
	v := NewIdentityVerifier("gateway-secret")
	v.now = func() time.Time { return now }

	ts := strconv.FormatInt(now.Unix(), 10)
	good := SignIdentity("gateway-secret", "officer-1", entity.RoleOfficer, now)

	tests := []struct {
		name      string
		userID    string
		role      entity.Role
		timestamp string
		signature string
		wantErr   error
	}{
		{name: "valid", userID: "officer-1", role: entity.RoleOfficer, timestamp: ts, signature: good},
		{name: "surrounding whitespace", userID: "officer-1", role: entity.RoleOfficer, timestamp: ts, signature: "  " + good + " "},
		{name: "unsigned", userID: "officer-1", role: entity.RoleOfficer, timestamp: ts, wantErr: errIdentityUnsigned},
		{name: "escalated role", userID: "officer-1", role: entity.RoleReviewer, timestamp: ts, signature: good, wantErr: errIdentityForged},
		{name: "other user", userID: "officer-2", role: entity.RoleOfficer, timestamp: ts, signature: good, wantErr: errIdentityForged},
		{name: "not hex", userID: "officer-1", role: entity.RoleOfficer, timestamp: ts, signature: "zz", wantErr: errIdentityForged},
		{name: "bad timestamp", userID: "officer-1", role: entity.RoleOfficer, timestamp: "yesterday", signature: good, wantErr: errIdentityForged},
		{
			name: "stale", userID: "officer-1", role: entity.RoleOfficer,
			timestamp: strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10),
			signature: SignIdentity("gateway-secret", "officer-1", entity.RoleOfficer, now.Add(-10*time.Minute)),
			wantErr:   errIdentityStale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.userID, tt.role, tt.timestamp, tt.signature)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSignedIdentityMiddleware(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.IdentitySecret = "gateway-secret"
	subs := &mockSubmissionService{
		listFunc: func(ctx context.Context, caller entity.Caller, status entity.SubmissionStatus) ([]*entity.SubmissionSummary, error) {
			return []*entity.SubmissionSummary{}, nil
		},
	}
	server := NewServer(cfg, Services{Submissions: subs}, &mockHealth{}, &mockLogger{})

	unsigned := httptest.NewRequest(http.MethodGet, "/api/v1/submissions", nil)
	unsigned.Header.Set(headerUserID, "reviewer-1")
	unsigned.Header.Set(headerUserRole, "reviewer")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, unsigned)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	signed := httptest.NewRequest(http.MethodGet, "/api/v1/submissions", nil)
	signed.Header.Set(headerUserID, "reviewer-1")
	signed.Header.Set(headerUserRole, "Reviewer")
	now := time.Now()
	signed.Header.Set(headerIdentityTimestamp, strconv.FormatInt(now.Unix(), 10))
	signed.Header.Set(headerIdentitySignature, SignIdentity("gateway-secret", "reviewer-1", entity.RoleReviewer, now))
	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, signed)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
