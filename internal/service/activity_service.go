package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/informaticaucm/seguimiento-api/internal/models"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
)

type activityRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Activity, error)
	RuleByID(ctx context.Context, id int64) (*models.RecurrenceRule, error)
	ExceptionByID(ctx context.Context, id int64) (*models.ActivityException, error)
	ListRulesByActivity(ctx context.Context, activityID int64) ([]models.RecurrenceRule, error)
	ListExceptionsByActivity(ctx context.Context, activityID int64) ([]models.ActivityException, error)
}

// ActivityService serves read-only lookups of activities, their recurrence
// rules and their exceptions.
type ActivityService struct {
	repo   activityRepository
	logger *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger}
}

// Get returns one activity.
func (s *ActivityService) Get(ctx context.Context, id int64) (*models.Activity, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "activity id must be a positive integer")
	}
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, wrapStore(err, "could not load activity")
	}
	return activity, nil
}

// GetRule returns one recurrence rule by its own id.
func (s *ActivityService) GetRule(ctx context.Context, id int64) (*models.RecurrenceRule, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "recurrence id must be a positive integer")
	}
	rule, err := s.repo.RuleByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recurrence not found")
		}
		return nil, wrapStore(err, "could not load recurrence")
	}
	return rule, nil
}

// GetException returns one exception by its own id.
func (s *ActivityService) GetException(ctx context.Context, id int64) (*models.ActivityException, error) {
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "exception id must be a positive integer")
	}
	exc, err := s.repo.ExceptionByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exception not found")
		}
		return nil, wrapStore(err, "could not load exception")
	}
	return exc, nil
}

// ListRules returns the recurrence rules of an activity.
func (s *ActivityService) ListRules(ctx context.Context, activityID int64) ([]models.RecurrenceRule, error) {
	if _, err := s.Get(ctx, activityID); err != nil {
		return nil, err
	}
	rules, err := s.repo.ListRulesByActivity(ctx, activityID)
	if err != nil {
		return nil, wrapStore(err, "could not list recurrences")
	}
	return rules, nil
}

// ListExceptions returns the exceptions of an activity.
func (s *ActivityService) ListExceptions(ctx context.Context, activityID int64) ([]models.ActivityException, error) {
	if _, err := s.Get(ctx, activityID); err != nil {
		return nil, err
	}
	exceptions, err := s.repo.ListExceptionsByActivity(ctx, activityID)
	if err != nil {
		return nil, wrapStore(err, "could not list exceptions")
	}
	return exceptions, nil
}
