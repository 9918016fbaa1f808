package storage

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewURLSigner("segredo", time.Hour)
	now := time.Now()

	query := signer.Sign("attachments/t1/blob", now)
	values, err := url.ParseQuery(query)
	require.NoError(t, err)

	err = signer.Verify("attachments/t1/blob", values.Get("expires"), values.Get("signature"), now.Add(30*time.Minute))
	assert.NoError(t, err)
}

func TestSignedURLExpired(t *testing.T) {
	signer := NewURLSigner("segredo", time.Hour)
	now := time.Now()

	query := signer.Sign("k", now)
	values, _ := url.ParseQuery(query)

	err := signer.Verify("k", values.Get("expires"), values.Get("signature"), now.Add(2*time.Hour))
	assert.Error(t, err)
}

func TestSignedURLWrongKey(t *testing.T) {
	signer := NewURLSigner("segredo", time.Hour)
	now := time.Now()

	query := signer.Sign("key-a", now)
	values, _ := url.ParseQuery(query)

	// A URL signed for one blob must not open another.
	err := signer.Verify("key-b", values.Get("expires"), values.Get("signature"), now)
	assert.Error(t, err)
}

func TestSignedURLTamperedExpiry(t *testing.T) {
	signer := NewURLSigner("segredo", time.Hour)
	now := time.Now()

	query := signer.Sign("k", now)
	values, _ := url.ParseQuery(query)

	err := signer.Verify("k", "9999999999", values.Get("signature"), now)
	assert.Error(t, err)
}

func TestSignedURLMalformedExpiry(t *testing.T) {
	signer := NewURLSigner("segredo", time.Hour)
	assert.Error(t, signer.Verify("k", "abc", "sig", time.Now()))
}
