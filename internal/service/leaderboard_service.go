package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/observability"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

const maxLeaderboardPageSize = 100

// LeaderboardService maintains and serves the global and per-course rankings.
type LeaderboardService interface {
	Update(ctx context.Context, studentID uint, courseID *uint, xpDelta int, counters dto.LeaderboardCounters) error
	Apply(ctx context.Context, repo repository.LeaderboardRepository, studentID uint, courseID *uint, xpDelta int, counters dto.LeaderboardCounters) ([]uint, error)
	Invalidate(ctx context.Context, scopes ...uint)
	Get(ctx context.Context, studentID uint, req dto.LeaderboardRequest) (dto.LeaderboardResponse, error)
	RerankAll(ctx context.Context) error
}

type leaderboardService struct {
	repo      repository.LeaderboardRepository
	courses   repository.CourseRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	pageSize  int
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

type cachedLeaderboardPage struct {
	Entries []dto.LeaderboardEntryResponse `json:"entries"`
	Total   int64                          `json:"total"`
}

// NewLeaderboardService constructs the leaderboard service. cache may be nil.
func NewLeaderboardService(repo repository.LeaderboardRepository, courses repository.CourseRepository, cache *redis.Client, cacheTTL time.Duration, pageSize int, validate *validator.Validate, logger zerolog.Logger) LeaderboardService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &leaderboardService{
		repo:      repo,
		courses:   courses,
		cache:     cache,
		cacheTTL:  cacheTTL,
		pageSize:  pageSize,
		validator: validate,
		logger:    logger.With().Str("component", "leaderboard_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/leaderboard"),
	}
}

// Update applies the XP and counter deltas to the student's global entry and, when
// a course is given, to the course entry, then invalidates the cached pages.
func (s *leaderboardService) Update(ctx context.Context, studentID uint, courseID *uint, xpDelta int, counters dto.LeaderboardCounters) error {
	scopes, err := s.Apply(ctx, s.repo, studentID, courseID, xpDelta, counters)
	if err != nil {
		return err
	}
	s.Invalidate(ctx, scopes...)
	return nil
}

// Apply writes the deltas through repo, which may be bound to the caller's
// transaction. Each scope is re-ranked after the write. The touched scopes are
// returned so the caller can invalidate them once the data is committed.
func (s *leaderboardService) Apply(ctx context.Context, repo repository.LeaderboardRepository, studentID uint, courseID *uint, xpDelta int, counters dto.LeaderboardCounters) ([]uint, error) {
	ctx, span := s.tracer.Start(ctx, "leaderboard.apply", trace.WithAttributes(
		attribute.Int64("leaderboard.student_id", int64(studentID)),
		attribute.Int("leaderboard.xp_delta", xpDelta),
	))
	defer span.End()

	delta := repository.LeaderboardDelta{
		XP:                   xpDelta,
		QuizzesCompleted:     counters.QuizzesCompleted,
		AssignmentsCompleted: counters.AssignmentsCompleted,
	}

	scopes := []uint{models.GlobalLeaderboardScope}
	if courseID != nil && *courseID != models.GlobalLeaderboardScope {
		scopes = append(scopes, *courseID)
	}

	for _, scope := range scopes {
		start := time.Now()
		if err := repo.ApplyDelta(ctx, studentID, scope, delta); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "apply_delta_failed")
			return nil, wrapInternal("update leaderboard", err)
		}
		observability.LeaderboardRerank().WithLabelValues(scopeLabel(scope)).Observe(time.Since(start).Seconds())
	}

	return scopes, nil
}

// Invalidate bumps the cache version of each scope so cached pages are skipped.
func (s *leaderboardService) Invalidate(ctx context.Context, scopes ...uint) {
	for _, scope := range scopes {
		s.bumpVersion(ctx, scope)
	}
}

func (s *leaderboardService) Get(ctx context.Context, studentID uint, req dto.LeaderboardRequest) (dto.LeaderboardResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LeaderboardResponse{}, err
	}

	scope := models.GlobalLeaderboardScope
	if req.CourseID != nil {
		if _, err := s.courses.GetByID(ctx, *req.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.LeaderboardResponse{}, ErrCourseNotFound
			}
			return dto.LeaderboardResponse{}, wrapInternal("load course", err)
		}
		scope = *req.CourseID
	}

	page := maxInt(req.Page, 1)
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if pageSize > maxLeaderboardPageSize {
		pageSize = maxLeaderboardPageSize
	}

	cached, err := s.loadPage(ctx, scope, page, pageSize)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	entries := make([]dto.LeaderboardEntryResponse, 0, len(cached.Entries))
	for _, entry := range cached.Entries {
		entry.IsCurrentUser = entry.StudentID == studentID
		entries = append(entries, entry)
	}

	response := dto.LeaderboardResponse{
		CourseID:    req.CourseID,
		Leaderboard: entries,
		Pagination:  dto.NewPaginationMeta(page, pageSize, cached.Total),
	}

	own, err := s.repo.GetEntry(ctx, studentID, scope)
	switch {
	case err == nil:
		entry := newLeaderboardEntryResponse(own)
		entry.IsCurrentUser = true
		rank := own.Rank
		response.UserRank = &rank
		response.UserEntry = &entry
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no XP earned in this scope yet
	default:
		return dto.LeaderboardResponse{}, wrapInternal("load leaderboard entry", err)
	}

	return response, nil
}

// RerankAll recomputes the ranks of every scope.
func (s *leaderboardService) RerankAll(ctx context.Context) error {
	scopes, err := s.repo.ListScopes(ctx)
	if err != nil {
		return wrapInternal("list leaderboard scopes", err)
	}

	for _, scope := range scopes {
		if err := s.repo.Rerank(ctx, scope); err != nil {
			return wrapInternal(fmt.Sprintf("rerank scope %d", scope), err)
		}
		s.bumpVersion(ctx, scope)
	}

	s.logger.Debug().Int("scopes", len(scopes)).Msg("leaderboards reconciled")
	return nil
}

func (s *leaderboardService) loadPage(ctx context.Context, scope uint, page, pageSize int) (cachedLeaderboardPage, error) {
	cacheKey := ""
	if s.cache != nil {
		cacheKey = fmt.Sprintf("leaderboard:%d:v%d:p%d:s%d", scope, s.version(ctx, scope), page, pageSize)
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var payload cachedLeaderboardPage
			if unmarshalErr := json.Unmarshal([]byte(cached), &payload); unmarshalErr == nil {
				observability.CacheLookups().WithLabelValues("leaderboard", "hit").Inc()
				return payload, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
		observability.CacheLookups().WithLabelValues("leaderboard", "miss").Inc()
	}

	rows, total, err := s.repo.Page(ctx, scope, page, pageSize)
	if err != nil {
		return cachedLeaderboardPage{}, wrapInternal("load leaderboard page", err)
	}

	payload := cachedLeaderboardPage{
		Entries: make([]dto.LeaderboardEntryResponse, 0, len(rows)),
		Total:   total,
	}
	for _, row := range rows {
		payload.Entries = append(payload.Entries, newLeaderboardEntryResponse(row))
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(payload); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return payload, nil
}

func (s *leaderboardService) version(ctx context.Context, scope uint) int64 {
	version, err := s.cache.Get(ctx, versionKey(scope)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Uint("scope", scope).Msg("failed to read leaderboard cache version")
	}
	return version
}

func (s *leaderboardService) bumpVersion(ctx context.Context, scope uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, versionKey(scope)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("scope", scope).Msg("failed to invalidate leaderboard cache")
	}
}

func versionKey(scope uint) string {
	return fmt.Sprintf("leaderboard:%d:version", scope)
}

func scopeLabel(scope uint) string {
	if scope == models.GlobalLeaderboardScope {
		return "global"
	}
	return "course"
}

func newLeaderboardEntryResponse(entry models.LeaderboardEntry) dto.LeaderboardEntryResponse {
	return dto.LeaderboardEntryResponse{
		Rank:                 entry.Rank,
		StudentID:            entry.StudentID,
		Name:                 entry.Student.Name,
		XP:                   entry.XP,
		QuizzesCompleted:     entry.QuizzesCompleted,
		AssignmentsCompleted: entry.AssignmentsCompleted,
	}
}
