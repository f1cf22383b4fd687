package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tapin-io/attendance-api/internal/dto"
	"github.com/tapin-io/attendance-api/internal/models"
	appErrors "github.com/tapin-io/attendance-api/pkg/errors"
)

type insightRepository interface {
	Create(ctx context.Context, insight *models.AIInsight) error
	ListByOrganization(ctx context.Context, orgID, eventID string, insightType models.InsightType, limit int) ([]models.AIInsight, error)
}

type insightEventRepository interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

// InsightService stores and lists AI-generated analyses. Generation lives in
// an external workflow engine that posts results back here.
type InsightService struct {
	insights  insightRepository
	events    insightEventRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	enabled   bool
}

// InsightServiceParams groups constructor dependencies.
type InsightServiceParams struct {
	Insights  insightRepository
	Events    insightEventRepository
	Cache     *CacheService
	Validator *validator.Validate
	Logger    *zap.Logger
	Enabled   bool
}

// NewInsightService wires an InsightService.
func NewInsightService(params InsightServiceParams) *InsightService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &InsightService{
		insights:  params.Insights,
		events:    params.Events,
		cache:     params.Cache,
		validator: validate,
		logger:    logger,
		enabled:   params.Enabled,
	}
}

// Ingest stores an insight for an event the organization owns.
func (s *InsightService) Ingest(ctx context.Context, orgID string, req dto.IngestInsightRequest) (*models.AIInsight, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "insights are disabled")
	}
	if orgID == "" {
		return nil, appErrors.ErrNoOrganization
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid insight payload")
	}

	event, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.OrganizationID != orgID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "event belongs to another organization")
	}

	insight := &models.AIInsight{
		EventID: req.EventID,
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
		Score:   req.Score,
	}
	if err := s.insights.Create(ctx, insight); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store insight")
	}
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("insights:*:%s", orgID))
	}
	return insight, nil
}

// List returns the newest insights for the organization, optionally narrowed
// to one event or type. Listings are cacheable since insights are
// append-only.
func (s *InsightService) List(ctx context.Context, orgID string, query dto.ListInsightsQuery) ([]models.AIInsight, error) {
	if !s.enabled {
		return []models.AIInsight{}, nil
	}
	if orgID == "" {
		return nil, appErrors.ErrNoOrganization
	}

	cacheKey := fmt.Sprintf("insights:%s:%s:%d:%s", query.EventID, query.Type, query.Limit, orgID)
	if s.cache.Enabled() {
		var cached []models.AIInsight
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	insights, err := s.insights.ListByOrganization(ctx, orgID, query.EventID, query.Type, query.Limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list insights")
	}
	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, insights, 0)
	}
	return insights, nil
}
