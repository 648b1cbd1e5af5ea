package tgauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(fields map[string]string, botToken string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyValidPayload(t *testing.T) {
	token := "123456:ABC-test-token"
	fields := map[string]string{
		"id":         "42",
		"first_name": "Alice",
		"username":   "alice",
		"auth_date":  "1700000000",
	}
	fields["hash"] = sign(fields, token)

	require.NoError(t, Verify(fields, token))

	ident, err := ParseIdentity(fields)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ident.TgID)
	assert.Equal(t, "Alice", ident.FirstName)
}

func TestVerifyRejectsTampering(t *testing.T) {
	token := "123456:ABC-test-token"
	fields := map[string]string{
		"id":        "42",
		"username":  "alice",
		"auth_date": "1700000000",
	}
	fields["hash"] = sign(fields, token)
	fields["id"] = "43"

	assert.ErrorIs(t, Verify(fields, token), ErrBadHash)
}

func TestVerifyRejectsWrongToken(t *testing.T) {
	fields := map[string]string{"id": "42", "auth_date": "1700000000"}
	fields["hash"] = sign(fields, "real-token")

	assert.ErrorIs(t, Verify(fields, "other-token"), ErrBadHash)
}

func TestVerifyMissingHash(t *testing.T) {
	assert.ErrorIs(t, Verify(map[string]string{"id": "42"}, "tok"), ErrMissingHash)
}

func TestVerifyEmptyBotToken(t *testing.T) {
	fields := map[string]string{"id": "42"}
	fields["hash"] = sign(fields, "")
	assert.ErrorIs(t, Verify(fields, ""), ErrBadHash)
}

func TestParseIdentityBadID(t *testing.T) {
	_, err := ParseIdentity(map[string]string{"id": "not-a-number"})
	assert.Error(t, err)

	_, err = ParseIdentity(map[string]string{"id": "0"})
	assert.Error(t, err)
}
