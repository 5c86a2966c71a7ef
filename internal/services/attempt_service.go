package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/cache"
	"github.com/SAP-F-2025/proficiency-service/internal/events"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
)

type attemptService struct {
	repo      repositories.Repository
	scorer    ScoringService
	ability   AbilityService
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewAttemptService(
	repo repositories.Repository,
	scorer ScoringService,
	ability AbilityService,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		scorer:    scorer,
		ability:   ability,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Begin opens (or re-opens) the user's attempt. The first call anchors the
// clock by creating the session row; every later call reuses that anchor, so
// leaving and returning never restarts the timer.
func (s *attemptService) Begin(ctx context.Context, assessmentID uint, userID string) (*BeginAttemptResponse, error) {
	user, err := s.repo.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	assessment, err := s.repo.Assessments().GetByIDWithItems(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}

	if err := s.authorize(user, assessment); err != nil {
		return nil, err
	}

	taken, err := s.repo.Attempts().HasResult(ctx, assessmentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check result: %w", err)
	}
	if taken {
		return nil, ErrAlreadySubmitted
	}

	// Manual entry past the deadline is refused outright. Auto-submission of
	// an in-flight attempt is handled at submit time instead.
	if assessment.Deadline != nil && time.Now().UTC().After(*assessment.Deadline) {
		return nil, ErrDeadlinePassed
	}

	session, err := s.repo.Attempts().GetOrCreateSession(ctx, assessmentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	s.logger.InfoContext(ctx, "Attempt session opened",
		"assessment_id", assessmentID,
		"user_id", userID,
		"started_at", session.StartedAt)

	return &BeginAttemptResponse{
		AssessmentID:     assessment.ID,
		Name:             assessment.Name,
		Kind:             assessment.Kind,
		Items:            itemViews(assessment.Items),
		StartedAt:        session.StartedAt,
		RemainingSeconds: remainingSeconds(assessment, session, time.Now().UTC()),
	}, nil
}

// RemainingTime reports the seconds left on the attempt clock, clamped at
// zero once the budget is exhausted.
func (s *attemptService) RemainingTime(ctx context.Context, assessmentID uint, userID string) (int, error) {
	assessment, err := s.repo.Assessments().GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrAssessmentNotFound
		}
		return 0, fmt.Errorf("failed to load assessment: %w", err)
	}

	session, err := s.repo.Attempts().GetSession(ctx, assessmentID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrNotStarted
		}
		return 0, fmt.Errorf("failed to load session: %w", err)
	}

	return remainingSeconds(assessment, session, time.Now().UTC()), nil
}

// Submit grades and persists the attempt. Validation order: assessment must
// exist, no result may exist yet, then the deadline policy, then non-empty
// responses. An attempt whose time budget ran out is accepted as an
// auto-submission regardless of the deadline; a manual submission past the
// deadline is refused.
func (s *attemptService) Submit(ctx context.Context, req *SubmitAttemptRequest, userID string, isAuto bool) (*SubmitAttemptResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	assessment, err := s.repo.Assessments().GetByIDWithItems(ctx, req.AssessmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}

	taken, err := s.repo.Attempts().HasResult(ctx, req.AssessmentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check result: %w", err)
	}
	if taken {
		return nil, ErrAlreadySubmitted
	}

	session, err := s.repo.Attempts().GetSession(ctx, req.AssessmentID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotStarted
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := time.Now().UTC()
	elapsed := int(now.Sub(session.StartedAt).Seconds())
	if elapsed >= assessment.TimeLimit {
		isAuto = true
	}
	if !isAuto && assessment.Deadline != nil && now.After(*assessment.Deadline) {
		return nil, ErrDeadlinePassed
	}

	if len(req.Answers) == 0 {
		return nil, ErrEmptySubmission
	}

	score, responses, breakdown := s.scorer.Score(assessment.Items, req.Answers)

	result := &models.AttemptResult{
		AssessmentID: req.AssessmentID,
		UserID:       userID,
		Score:        score,
		TimeTaken:    elapsed,
		Responses:    responses,
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Attempts().CreateResult(ctx, result)
	})
	if err != nil {
		// A concurrent submit won the unique-index race; the stored result
		// stands and this one is rejected.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("failed to persist result: %w", err)
	}

	s.logger.InfoContext(ctx, "Attempt submitted",
		"assessment_id", req.AssessmentID,
		"user_id", userID,
		"score", score,
		"total_items", len(responses),
		"auto", isAuto)

	s.afterSubmit(ctx, userID, req.AssessmentID, score, len(responses), isAuto, breakdown)

	return &SubmitAttemptResponse{
		AssessmentID:  req.AssessmentID,
		Score:         score,
		TotalItems:    len(responses),
		TimeTaken:     elapsed,
		AutoSubmitted: isAuto,
		Breakdown:     breakdown,
	}, nil
}

// Generate creates a static quiz by sampling the item bank. Only the
// previous-exam source is implemented; the AI-backed sources are reserved.
func (s *attemptService) Generate(ctx context.Context, req *GenerateAttemptRequest, userID string) (*models.Assessment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if _, err := s.repo.Users().GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if req.Source != models.SourcePreviousExam {
		return nil, ErrSourceUnavailable
	}

	categories := make([]models.Category, 0, len(req.CategoryIDs))
	for _, categoryID := range req.CategoryIDs {
		category, err := s.repo.Items().GetCategory(ctx, categoryID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		categories = append(categories, *category)
	}

	available, err := s.repo.Items().CountByCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	if available < int64(req.Count) {
		return nil, ErrInsufficientItems
	}

	items, err := s.repo.Items().GetRandomByCategories(ctx, req.CategoryIDs, req.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to sample items: %w", err)
	}
	if len(items) < req.Count {
		return nil, ErrInsufficientItems
	}

	timeLimit := req.TimeLimit
	if timeLimit == 0 {
		timeLimit = defaultSecondsPerItem * req.Count
	}

	assessment := &models.Assessment{
		Name:               req.Name,
		CreatedBy:          userID,
		Kind:               req.Kind,
		Source:             req.Source,
		Deadline:           req.Deadline,
		TimeLimit:          timeLimit,
		Items:              dereferenceItems(items),
		SelectedCategories: categories,
	}

	if err := s.repo.Assessments().Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	s.logger.InfoContext(ctx, "Assessment generated",
		"assessment_id", assessment.ID,
		"user_id", userID,
		"items", len(items),
		"time_limit", timeLimit)

	return assessment, nil
}

// ListForClass projects the class's assessments with the caller's attempt
// status and whether each is still open for entry.
func (s *attemptService) ListForClass(ctx context.Context, classID uint, userID string) ([]*AssessmentSummary, error) {
	if _, err := s.repo.Users().GetClass(ctx, classID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to load class: %w", err)
	}

	assessments, err := s.repo.Assessments().ListForClass(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	now := time.Now().UTC()
	summaries := make([]*AssessmentSummary, 0, len(assessments))
	for _, assessment := range assessments {
		status, err := s.attemptStatus(ctx, assessment.ID, userID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &AssessmentSummary{
			ID:        assessment.ID,
			Name:      assessment.Name,
			Kind:      assessment.Kind,
			Status:    status,
			IsOpen:    assessment.Deadline == nil || now.Before(*assessment.Deadline),
			Deadline:  assessment.Deadline,
			TimeLimit: assessment.TimeLimit,
		})
	}
	return summaries, nil
}

func (s *attemptService) InitialExam(ctx context.Context) (*models.Assessment, error) {
	assessment, err := s.repo.Assessments().GetInitialExam(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load initial exam: %w", err)
	}
	return assessment, nil
}

func (s *attemptService) InitialExamTaken(ctx context.Context, userID string) (bool, error) {
	assessment, err := s.InitialExam(ctx)
	if err != nil {
		return false, err
	}
	taken, err := s.repo.Attempts().HasResult(ctx, assessment.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check result: %w", err)
	}
	return taken, nil
}
