package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

func TestCourseRepositoryLoadsOrderedStructure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	seeded := seedCourse(t, db)

	course, err := repo.GetBySlug(context.Background(), "go-fundamentals")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, course.ID)
	require.Len(t, course.Modules, 2)
	require.Equal(t, "Basics", course.Modules[0].Title)
	require.Len(t, course.Modules[0].Quizzes, 1)
	require.Len(t, course.Modules[0].Quizzes[0].Questions, 1)
	require.Equal(t, []string{"defer", "go", "chan"}, course.Modules[0].Quizzes[0].Questions[0].OptionList())

	_, err = repo.GetByID(context.Background(), 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCourseRepositoryUpsertBySlug(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)

	course := models.Course{Title: "Intro to SQL", Modules: []models.Module{{Title: "Select"}}}
	created, err := repo.UpsertBySlug(context.Background(), &course)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "intro-to-sql", course.Slug)

	refresh := models.Course{Title: "Intro to SQL", Description: "updated"}
	created, err = repo.UpsertBySlug(context.Background(), &refresh)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, course.ID, refresh.ID)

	stored, err := repo.GetBySlug(context.Background(), "intro-to-sql")
	require.NoError(t, err)
	require.Equal(t, "updated", stored.Description)
	require.Len(t, stored.Modules, 1)
}
