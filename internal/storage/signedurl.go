package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// URLSigner issues and verifies short-lived download URLs. The signature
// covers the storage key and the expiry timestamp, so a URL cannot be
// reused for another blob or after its TTL.
type URLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewURLSigner builds a signer with the given secret and TTL.
func NewURLSigner(secret string, ttl time.Duration) *URLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &URLSigner{secret: []byte(secret), ttl: ttl}
}

// Sign returns the query string granting temporary access to key.
func (s *URLSigner) Sign(key string, now time.Time) string {
	expires := now.Add(s.ttl).Unix()
	sig := s.signature(key, expires)
	values := url.Values{}
	values.Set("expires", strconv.FormatInt(expires, 10))
	values.Set("signature", sig)
	return values.Encode()
}

// Verify checks the signature and expiry for key.
func (s *URLSigner) Verify(key, expiresStr, signature string, now time.Time) error {
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil {
		return errors.New("malformed expiry")
	}
	if now.Unix() > expires {
		return errors.New("url expired")
	}
	expected := s.signature(key, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New("invalid signature")
	}
	return nil
}

func (s *URLSigner) signature(key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", key, expires)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
