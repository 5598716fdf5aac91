package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// SeedService loads course catalogs for local and staging environments.
type SeedService interface {
	SeedCatalog(ctx context.Context, token string, req dto.SeedCatalogRequest) (dto.SeedCatalogResponse, error)
}

type seedService struct {
	courses   repository.CourseRepository
	enabled   bool
	token     string
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(courses repository.CourseRepository, enabled bool, token string, validator *validator.Validate, logger zerolog.Logger) SeedService {
	return &seedService{
		courses:   courses,
		enabled:   enabled,
		token:     token,
		validator: validator,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

// SeedCatalog upserts each course by slug. New courses are created with their full
// module structure; existing ones only have their descriptive fields refreshed.
func (s *seedService) SeedCatalog(ctx context.Context, token string, req dto.SeedCatalogRequest) (dto.SeedCatalogResponse, error) {
	if !s.enabled {
		return dto.SeedCatalogResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SeedCatalogResponse{}, ErrSeedUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.SeedCatalogResponse{}, err
	}

	response := dto.SeedCatalogResponse{Slugs: make([]string, 0, len(req.Courses))}
	for _, item := range req.Courses {
		course, err := buildSeedCourse(item)
		if err != nil {
			return dto.SeedCatalogResponse{}, err
		}

		created, err := s.courses.UpsertBySlug(ctx, &course)
		if err != nil {
			return dto.SeedCatalogResponse{}, wrapInternal("upsert course", err)
		}
		if created {
			response.Created++
		} else {
			response.Updated++
		}
		response.Slugs = append(response.Slugs, course.Slug)
	}

	s.logger.Info().Int("created", response.Created).Int("updated", response.Updated).Msg("catalog seeded")
	return response, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

func buildSeedCourse(item dto.SeedCourse) (models.Course, error) {
	course := models.Course{
		Title:       strings.TrimSpace(item.Title),
		Slug:        slug.Make(item.Slug),
		Description: item.Description,
		Thumbnail:   item.Thumbnail,
	}
	if course.Slug == "" {
		course.Slug = slug.Make(course.Title)
	}

	for i, seedModule := range item.Modules {
		module := models.Module{Title: seedModule.Title, Position: i + 1}
		for j, seedQuiz := range seedModule.Quizzes {
			quiz := models.Quiz{Title: seedQuiz.Title, Position: j + 1}
			for k, seedQuestion := range seedQuiz.Questions {
				if seedQuestion.CorrectOption >= len(seedQuestion.Options) {
					return models.Course{}, fmt.Errorf("%w: question %q has no option %d", ErrInvalidInput, seedQuestion.Prompt, seedQuestion.CorrectOption)
				}
				question := models.QuizQuestion{
					Prompt:        seedQuestion.Prompt,
					CorrectOption: seedQuestion.CorrectOption,
					Explanation:   seedQuestion.Explanation,
					Position:      k + 1,
				}
				question.SetOptions(seedQuestion.Options)
				quiz.Questions = append(quiz.Questions, question)
			}
			module.Quizzes = append(module.Quizzes, quiz)
		}
		for j, seedTask := range seedModule.Tasks {
			module.Tasks = append(module.Tasks, models.Task{
				Title:       seedTask.Title,
				Description: seedTask.Description,
				Position:    j + 1,
			})
		}
		course.Modules = append(course.Modules, module)
	}

	return course, nil
}
