package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/sheetswap/internal/config"
	"github.com/JonMunkholm/sheetswap/internal/logging"
	"github.com/google/uuid"
)

// OptionsFunc returns the options chosen for the i-th uploaded file.
type OptionsFunc func(index int, name string) Options

// Service runs upload batches through the pipeline.
type Service struct {
	cfg      *config.Config
	pipeline *Pipeline
	limiter  *UploadLimiter
	metrics  *Metrics
}

// NewService creates a Service from configuration. metrics may be nil.
func NewService(cfg *config.Config, metrics *Metrics) *Service {
	return &Service{
		cfg: cfg,
		pipeline: &Pipeline{
			Loader:      Loader{MaxFileSize: cfg.Upload.MaxFileSize},
			PreviewRows: cfg.Preview.Rows,
		},
		limiter: NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		metrics: metrics,
	}
}

// ProcessBatch runs every file once, sequentially in upload order. A failed
// file is reported in its FileResult and the batch continues. The returned
// error is only for problems with the batch as a whole (no files, too many
// files, no processing slot).
func (s *Service) ProcessBatch(ctx context.Context, files []FileInput, optsFor OptionsFunc) (*BatchResult, error) {
	if err := s.checkBatch(files); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.cfg.Upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Upload.Timeout)
		defer cancel()
	}

	start := time.Now()
	batch := &BatchResult{ID: uuid.New().String()}
	ctx = logging.ContextWithBatchID(ctx, batch.ID)
	logger := logging.FromContext(ctx)

	for i, f := range files {
		var res *FileResult
		if err := ctx.Err(); err != nil {
			res = &FileResult{Index: i, Name: f.Name}
			res.fail(err)
		} else {
			res = s.pipeline.Process(ctx, i, f, optsFor(i, f.Name))
		}
		s.metrics.observeFile(res)
		batch.Files = append(batch.Files, res)
	}

	batch.Duration = time.Since(start)
	s.metrics.observeBatch(batch.Duration)

	if failed := batch.Failed(); failed == 0 {
		batch.Messages = append(batch.Messages, Message{Level: LevelSuccess, Text: "All files processed successfully!"})
	} else {
		batch.Messages = append(batch.Messages, Message{
			Level: LevelWarning,
			Text:  fmt.Sprintf("Processed %d files, %d could not be read.", len(files), failed),
		})
	}

	logger.Info("batch processed",
		"files", len(files),
		"failed", batch.Failed(),
		"duration_ms", batch.Duration.Milliseconds(),
	)
	return batch, nil
}

// ExportFile re-runs the pipeline for a single file and serializes the
// result in opts.Export.
func (s *Service) ExportFile(ctx context.Context, index int, file FileInput, opts Options) (*Download, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	res := s.pipeline.Process(ctx, index, file, opts)
	s.metrics.observeFile(res)

	dl, err := s.pipeline.Export(res, opts.Export)
	s.metrics.observeExport(opts.Export, err)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("file exported",
		"file", file.Name,
		"format", opts.Export,
		"output", dl.Filename,
		"bytes", len(dl.Data),
	)
	return dl, nil
}

// Process runs a single file without touching the limiter. It is used by
// the CLI, which handles files one at a time.
func (s *Service) Process(ctx context.Context, index int, file FileInput, opts Options) *FileResult {
	res := s.pipeline.Process(ctx, index, file, opts)
	s.metrics.observeFile(res)
	return res
}

// Export serializes an already processed file.
func (s *Service) Export(res *FileResult, format ExportFormat) (*Download, error) {
	dl, err := s.pipeline.Export(res, format)
	s.metrics.observeExport(format, err)
	return dl, err
}

// LimiterStatus reports batch slot usage.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForBatches blocks until in-flight batches finish or ctx ends.
func (s *Service) WaitForBatches(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) checkBatch(files []FileInput) error {
	if len(files) == 0 {
		return fmt.Errorf("no file provided")
	}
	if max := s.cfg.Upload.MaxFiles; max > 0 && len(files) > max {
		return fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(files), max)
	}
	return nil
}
