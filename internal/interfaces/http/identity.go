package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

const (
	headerIdentityTimestamp = "X-Identity-Timestamp"
	headerIdentitySignature = "X-Identity-Signature"

	identityMaxSkew = 5 * time.Minute
)

var (
	errIdentityUnsigned = errors.New("caller identity is not signed")
	errIdentityStale    = errors.New("caller identity signature expired")
	errIdentityForged   = errors.New("caller identity signature mismatch")
)

// IdentityVerifier checks the gateway's HMAC-SHA256 over the caller headers.
// The signed message is "<user id>\n<role>\n<unix seconds>".
type IdentityVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewIdentityVerifier returns nil for an empty secret
func NewIdentityVerifier(secret string) *IdentityVerifier {
	if secret == "" {
		return nil
	}
	return &IdentityVerifier{secret: []byte(secret), now: time.Now}
}

// SignIdentity computes the X-Identity-Signature value the gateway sends
func SignIdentity(secret, userID string, role entity.Role, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(identityMessage(userID, role, strconv.FormatInt(at.Unix(), 10))))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify rejects unsigned, stale or forged identities
func (v *IdentityVerifier) Verify(userID string, role entity.Role, timestamp, signature string) error {
	timestamp = strings.TrimSpace(timestamp)
	signature = strings.ToLower(strings.TrimSpace(signature))
	if timestamp == "" || signature == "" {
		return errIdentityUnsigned
	}

	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errIdentityForged
	}
	skew := v.now().Sub(time.Unix(secs, 0))
	if skew < -identityMaxSkew || skew > identityMaxSkew {
		return errIdentityStale
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return errIdentityForged
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(identityMessage(userID, role, timestamp)))
	if !hmac.Equal(got, mac.Sum(nil)) {
		return errIdentityForged
	}
	return nil
}

func identityMessage(userID string, role entity.Role, timestamp string) string {
	return userID + "\n" + string(role) + "\n" + timestamp
}
