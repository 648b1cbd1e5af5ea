// Package tgauth verifies Telegram Login Widget callback payloads.
package tgauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrMissingHash = errors.New("missing_hash")
	ErrBadHash     = errors.New("bad_hash")
)

// Identity is the subset of the widget payload the storefront cares about.
type Identity struct {
	TgID      int64
	FirstName string
	Username  string
	PhotoURL  string
}

// Verify checks the widget payload signature. The data-check string is every
// field except hash, sorted by key and joined as key=value lines; the HMAC key
// is SHA-256 of the bot token. Comparison is constant time. An empty bot token
// never verifies.
func Verify(fields map[string]string, botToken string) error {
	if botToken == "" {
		return ErrBadHash
	}
	gotHash, ok := fields["hash"]
	if !ok || gotHash == "" {
		return ErrMissingHash
	}

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
	checkString := strings.Join(pairs, "\n")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(checkString))
	want := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(want), []byte(strings.ToLower(gotHash))) {
		return ErrBadHash
	}
	return nil
}

// ParseIdentity extracts the Telegram identity from a verified payload.
func ParseIdentity(fields map[string]string) (Identity, error) {
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil || id <= 0 {
		return Identity{}, errors.New("bad_user_id")
	}
	return Identity{
		TgID:      id,
		FirstName: fields["first_name"],
		Username:  fields["username"],
		PhotoURL:  fields["photo_url"],
	}, nil
}
