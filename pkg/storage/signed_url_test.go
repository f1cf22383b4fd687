package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundtrip(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)

	token, expiresAt, err := signer.Generate("export-1", "attendance-event-1-20260515.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	exportID, filename, _, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "export-1", exportID)
	assert.Equal(t, "attendance-event-1-20260515.csv", filename)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)

	token, _, err := signer.Generate("export-1", "report.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token + "x")
	assert.Error(t, err)

	other := NewSignedURLSigner("other-secret", time.Hour)
	_, _, _, err = other.Parse(token)
	assert.Error(t, err)
}

func TestSignedURLRejectsExpired(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)
	signer.ttl = -time.Minute

	token, _, err := signer.Generate("export-1", "report.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token)
	assert.ErrorContains(t, err, "expired")
}

func TestSignedURLRequiresFields(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)

	_, _, err := signer.Generate("", "report.pdf")
	assert.Error(t, err)

	_, _, err = signer.Generate("export-1", "")
	assert.Error(t, err)
}
