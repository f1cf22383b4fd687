package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tapin-io/attendance-api/internal/dto"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
	"github.com/tapin-io/attendance-api/pkg/jobs"
	"github.com/tapin-io/attendance-api/pkg/storage"
)

const (
	archiveJobSave    = "save"
	archiveJobCleanup = "cleanup"

	archiveCleanupInterval = time.Hour
)

type archiveSavePayload struct {
	filename string
	data     []byte
}

// ExportArchiveConfig tunes the export archive.
type ExportArchiveConfig struct {
	Workers   int
	RetainFor time.Duration
}

// ExportArchiveService keeps rendered report exports on disk and hands out
// signed download tokens. Writes go through a background queue so report
// requests never wait on disk; if the queue cannot take the job the save
// happens inline instead.
type ExportArchiveService struct {
	store  *storage.LocalStorage
	signer *storage.SignedURLSigner
	queue  *jobs.Queue
	logger *zap.Logger
	retain time.Duration
}

// NewExportArchiveService wires an ExportArchiveService.
func NewExportArchiveService(store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger, cfg ExportArchiveConfig) *ExportArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	retain := cfg.RetainFor
	if retain <= 0 {
		retain = 7 * 24 * time.Hour
	}

	s := &ExportArchiveService{
		store:  store,
		signer: signer,
		logger: logger,
		retain: retain,
	}
	s.queue = jobs.NewQueue("export-archive", s.handleJob, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the archive workers and the periodic cleanup.
func (s *ExportArchiveService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.cleanupLoop(ctx)
}

// Stop drains the archive workers.
func (s *ExportArchiveService) Stop() {
	s.queue.Stop()
}

// Archive stores a rendered export and returns its download ticket.
func (s *ExportArchiveService) Archive(filename string, payload []byte) (*dto.ExportTicket, error) {
	exportID := uuid.NewString()

	token, expiresAt, err := s.signer.Generate(exportID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export token")
	}

	job := jobs.Job{
		ID:      exportID,
		Type:    archiveJobSave,
		Payload: archiveSavePayload{filename: filename, data: payload},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("archive queue rejected job, saving inline",
			zap.String("export_id", exportID), zap.Error(err))
		if err := s.store.Save(filename, payload); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive export")
		}
	}

	return &dto.ExportTicket{
		ExportID:      exportID,
		Filename:      filename,
		DownloadToken: token,
		ExpiresAt:     expiresAt,
	}, nil
}

// Open validates a download token and returns the archived file.
// The caller owns the returned handle.
func (s *ExportArchiveService) Open(token string) (*os.File, string, error) {
	_, filename, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	file, err := s.store.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export not available")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return file, filename, nil
}

func (s *ExportArchiveService) handleJob(_ context.Context, job jobs.Job) error {
	switch job.Type {
	case archiveJobSave:
		payload, ok := job.Payload.(archiveSavePayload)
		if !ok {
			return fmt.Errorf("unexpected payload for save job %s", job.ID)
		}
		if err := s.store.Save(payload.filename, payload.data); err != nil {
			return err
		}
		s.logger.Debug("export archived", zap.String("export_id", job.ID), zap.String("filename", payload.filename))
		return nil
	case archiveJobCleanup:
		deleted, err := s.store.CleanupOlderThan(s.retain)
		if err != nil {
			return err
		}
		if len(deleted) > 0 {
			s.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
		}
		return nil
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}

func (s *ExportArchiveService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(archiveCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: archiveJobCleanup}); err != nil {
				s.logger.Warn("failed to schedule export cleanup", zap.Error(err))
			}
		}
	}
}
