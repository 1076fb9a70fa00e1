package usecase

import (
	"context"

	"go.uber.org/zap"

	"jobselect/domain"
)

type ResumeSource interface {
	Get(ctx context.Context, id string) (domain.Application, error)
	Document(ctx context.Context, applicationID string) ([]byte, error)
	SetExtract(ctx context.Context, applicationID string, status domain.ExtractStatus, text, failure string) error
}

type TextExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

// ExtractionService is the worker side of the resume pipeline.
type ExtractionService struct {
	apps      ResumeSource
	extractor TextExtractor
	logger    *zap.Logger
}

func NewExtractionService(apps ResumeSource, extractor TextExtractor, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{apps: apps, extractor: extractor, logger: logger}
}

// Handle moves one extract through processing to completed or failed.
// Extraction failures are recorded on the row, not returned.
func (s *ExtractionService) Handle(ctx context.Context, evt domain.ApplicationSubmitted) error {
	ctx, span := tracer.Start(ctx, "ExtractionService.Handle")
	defer span.End()

	log := s.logger.With(zap.String("application_id", evt.ApplicationID))
	log.Info("processing resume")

	if err := s.apps.SetExtract(ctx, evt.ApplicationID, domain.ExtractProcessing, "", ""); err != nil {
		return err
	}

	app, err := s.apps.Get(ctx, evt.ApplicationID)
	if err != nil {
		return s.fail(ctx, log, evt.ApplicationID, "application not found", err)
	}
	data, err := s.apps.Document(ctx, evt.ApplicationID)
	if err != nil {
		return s.fail(ctx, log, evt.ApplicationID, "resume not found", err)
	}

	text, err := s.extractor.ExtractText(app.ResumeFilename, data)
	if err != nil {
		return s.fail(ctx, log, evt.ApplicationID, "could not extract text", err)
	}

	if err := s.apps.SetExtract(ctx, evt.ApplicationID, domain.ExtractCompleted, text, ""); err != nil {
		return err
	}
	log.Info("resume extracted", zap.Int("chars", len([]rune(text))))
	return nil
}

func (s *ExtractionService) fail(ctx context.Context, log *zap.Logger, id, reason string, cause error) error {
	log.Warn("resume extraction failed", zap.String("reason", reason), zap.Error(cause))
	return s.apps.SetExtract(ctx, id, domain.ExtractFailed, "", reason)
}
