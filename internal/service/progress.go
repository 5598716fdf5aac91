package service

import (
	"math"
	"sort"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
)

// ComputeProgress returns the completion percentage (0-100) of a course given the
// sets of completed quiz and task ids. A course without items has 0% progress.
func ComputeProgress(course models.Course, completedQuizIDs, completedTaskIDs map[uint]struct{}) int {
	total, completed := countItems(course.Modules, completedQuizIDs, completedTaskIDs)
	return percentage(completed, total)
}

// ComputeModuleProgress breaks ComputeProgress down per module, in course order.
func ComputeModuleProgress(course models.Course, completedQuizIDs, completedTaskIDs map[uint]struct{}) []dto.ModuleProgress {
	modules := make([]dto.ModuleProgress, 0, len(course.Modules))
	for _, module := range course.Modules {
		total, completed := countItems([]models.Module{module}, completedQuizIDs, completedTaskIDs)
		modules = append(modules, dto.ModuleProgress{
			ModuleID:       module.ID,
			Title:          module.Title,
			TotalItems:     total,
			CompletedItems: completed,
			Percentage:     percentage(completed, total),
		})
	}
	return modules
}

// ModuleOutlines lists every module's quizzes and tasks merged by position, each
// flagged with the student's completion.
func ModuleOutlines(course models.Course, completedQuizIDs, completedTaskIDs map[uint]struct{}) []dto.ModuleOutline {
	outlines := make([]dto.ModuleOutline, 0, len(course.Modules))
	for _, module := range course.Modules {
		items := make([]dto.ModuleItem, 0, len(module.Quizzes)+len(module.Tasks))
		for _, quiz := range module.Quizzes {
			_, done := completedQuizIDs[quiz.ID]
			items = append(items, dto.ModuleItem{ID: quiz.ID, Type: models.CompletionItemQuiz, Title: quiz.Title, Position: quiz.Position, Completed: done})
		}
		for _, task := range module.Tasks {
			_, done := completedTaskIDs[task.ID]
			items = append(items, dto.ModuleItem{ID: task.ID, Type: models.CompletionItemTask, Title: task.Title, Position: task.Position, Completed: done})
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

		total, completed := countItems([]models.Module{module}, completedQuizIDs, completedTaskIDs)
		outlines = append(outlines, dto.ModuleOutline{
			ID:             module.ID,
			Title:          module.Title,
			Position:       module.Position,
			TotalItems:     total,
			CompletedItems: completed,
			Percentage:     percentage(completed, total),
			Items:          items,
		})
	}
	return outlines
}

func countItems(modules []models.Module, completedQuizIDs, completedTaskIDs map[uint]struct{}) (int, int) {
	total, completed := 0, 0
	for _, module := range modules {
		total += len(module.Quizzes) + len(module.Tasks)
		for _, quiz := range module.Quizzes {
			if _, ok := completedQuizIDs[quiz.ID]; ok {
				completed++
			}
		}
		for _, task := range module.Tasks {
			if _, ok := completedTaskIDs[task.ID]; ok {
				completed++
			}
		}
	}
	return total, completed
}

func percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func completionSets(completions []models.EnrollmentCompletion) (map[uint]struct{}, map[uint]struct{}) {
	enrollment := models.Enrollment{Completions: completions}
	return enrollment.CompletedQuizIDs(), enrollment.CompletedTaskIDs()
}
