package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
	"github.com/tapin-io/attendance-api/pkg/storage"
)

func newArchiveService(t *testing.T) *ExportArchiveService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportArchiveService(store, signer, zap.NewNop(), ExportArchiveConfig{})
}

func TestExportArchiveInlineSave(t *testing.T) {
	svc := newArchiveService(t)

	ticket, err := svc.Archive("report.csv", []byte("a,b,c\n"))
	require.NoError(t, err)
	require.NotEmpty(t, ticket.DownloadToken)
	assert.Equal(t, "report.csv", ticket.Filename)

	file, filename, err := svc.Open(ticket.DownloadToken)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, "report.csv", filename)
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n", string(content))
}

func TestExportArchiveQueuedSave(t *testing.T) {
	svc := newArchiveService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	ticket, err := svc.Archive("report.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		file, _, err := svc.Open(ticket.DownloadToken)
		if err != nil {
			return false
		}
		file.Close()
		return true
	}, time.Second, 10*time.Millisecond)
}

func TestExportArchiveOpenRejectsBadToken(t *testing.T) {
	svc := newArchiveService(t)

	_, _, err := svc.Open("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestExportArchiveOpenMissingFile(t *testing.T) {
	svc := newArchiveService(t)

	token, _, err := storage.NewSignedURLSigner("test-secret", time.Hour).Generate("export-1", "never-saved.csv")
	require.NoError(t, err)

	_, _, err = svc.Open(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
