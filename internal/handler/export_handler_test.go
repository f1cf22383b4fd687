package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

type fakeExportArchive struct {
	dir       string
	filename  string
	err       error
	lastToken string
}

func (f *fakeExportArchive) Open(token string) (*os.File, string, error) {
	f.lastToken = token
	if f.err != nil {
		return nil, "", f.err
	}
	file, err := os.Open(filepath.Join(f.dir, f.filename))
	if err != nil {
		return nil, "", err
	}
	return file, f.filename, nil
}

func TestExportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.csv"), []byte("a,b\n"), 0o644))

	archive := &fakeExportArchive{dir: dir, filename: "report.csv"}
	h := NewExportHandler(archive)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/tok-1", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}

	h.Download(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-1", archive.lastToken)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.csv")
	assert.Equal(t, "a,b\n", rec.Body.String())
}

func TestExportHandlerDownloadInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewExportHandler(&fakeExportArchive{err: appErrors.ErrUnauthorized})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	h.Download(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
