package tokens

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "53D0jjbsjTb6Of-test-secret-xxxxxxxx"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sign(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId":   "65f0c0ffee0000000000beef",
		"username": "alice",
		"nome":     "Alice",
		"iat":      exp.Add(-time.Hour).Unix(),
		"exp":      exp.Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func b64(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

func TestVerify_ValidToken(t *testing.T) {
	v := NewVerifier(testSecret, func() time.Time { return fixedNow })
	claims, err := v.Verify(sign(t, testSecret, fixedNow.Add(time.Hour)))
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "Alice", claims.Name)
	require.Equal(t, "65f0c0ffee0000000000beef", claims.UserID)
}

func TestVerify_Expired(t *testing.T) {
	v := NewVerifier(testSecret, func() time.Time { return fixedNow })
	_, err := v.Verify(sign(t, testSecret, fixedNow.Add(-time.Minute)))
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, func() time.Time { return fixedNow })
	_, err := v.Verify(sign(t, "different-secret-xxxxxxxxxxxxxxxx", fixedNow.Add(time.Hour)))
	require.ErrorIs(t, err, ErrInvalid)
}

// A bad signature wins over expiry: signature is checked before claims.
func TestVerify_WrongSecretAndExpired(t *testing.T) {
	v := NewVerifier(testSecret, func() time.Time { return fixedNow })
	_, err := v.Verify(sign(t, "different-secret-xxxxxxxxxxxxxxxx", fixedNow.Add(-time.Hour)))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	v := NewVerifier(testSecret, nil)
	for _, raw := range []string{"", "not.a.jwt", "garbage"} {
		_, err := v.Verify(raw)
		require.ErrorIs(t, err, ErrInvalid, "raw=%q", raw)
	}
}

func TestVerify_AlgNoneRejected(t *testing.T) {
	headerEnc := b64([]byte(`{"alg":"none","typ":"JWT"}`))
	payloadEnc := b64([]byte(`{"username":"u-none","exp":9999999999}`))
	v := NewVerifier(testSecret, nil)
	_, err := v.Verify(headerEnc + "." + payloadEnc + ".")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_OtherAlgorithmRejected(t *testing.T) {
	claims := jwt.MapClaims{"username": "alice", "exp": fixedNow.Add(time.Hour).Unix()}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	v := NewVerifier(testSecret, func() time.Time { return fixedNow })
	_, err = v.Verify(s)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_TamperedPayload(t *testing.T) {
	tokenStr := sign(t, testSecret, fixedNow.Add(time.Hour))
	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = b64([]byte(strings.Replace(string(payload), "alice", "mallory", 1)))

	v := NewVerifier(testSecret, func() time.Time { return fixedNow })
	_, err = v.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrInvalid)
}
