package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// QuizSubmitRequest carries a student's answers keyed by question id.
type QuizSubmitRequest struct {
	CourseID uint                       `json:"course_id" validate:"required,gt=0"`
	ModuleID uint                       `json:"module_id" validate:"required,gt=0"`
	QuizID   uint                       `json:"quiz_id" validate:"required,gt=0"`
	Answers  map[string]json.RawMessage `json:"answers"`
}

// QuestionResult reports how a single question was answered.
type QuestionResult struct {
	QuestionID    uint   `json:"question_id"`
	UserAnswer    *int   `json:"user_answer"`
	CorrectAnswer int    `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
}

// QuizGrade is the outcome of grading a set of answers.
type QuizGrade struct {
	Score          int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	Percentage     int              `json:"percentage"`
	Results        []QuestionResult `json:"results"`
}

// QuizResultResponse is returned after a quiz submission.
type QuizResultResponse struct {
	QuizGrade
	FirstSubmission    bool `json:"first_submission"`
	XPEarned           int  `json:"xp_earned"`
	ProgressPercentage int  `json:"progress_percentage"`
	CourseCompleted    bool `json:"course_completed"`
}

// QuizSummary lists a quiz alongside the student's status for it.
type QuizSummary struct {
	ID             uint       `json:"id"`
	ModuleID       uint       `json:"module_id"`
	ModuleTitle    string     `json:"module_title"`
	Title          string     `json:"title"`
	QuestionCount  int        `json:"question_count"`
	Completed      bool       `json:"completed"`
	LastScore      *int       `json:"last_score"`
	TotalQuestions int        `json:"total_questions"`
	SubmittedAt    *time.Time `json:"submitted_at"`
}

// CourseQuizOverview summarizes quiz progress for one enrolled course.
type CourseQuizOverview struct {
	CourseID         uint   `json:"course_id"`
	CourseTitle      string `json:"course_title"`
	CourseSlug       string `json:"course_slug"`
	Thumbnail        string `json:"thumbnail"`
	TotalQuizzes     int    `json:"total_quizzes"`
	CompletedQuizzes int    `json:"completed_quizzes"`
	Progress         int    `json:"progress"`
}

// QuizDetailResponse exposes quiz questions without the answer key.
type QuizDetailResponse struct {
	ID        uint                   `json:"id"`
	ModuleID  uint                   `json:"module_id"`
	CourseID  uint                   `json:"course_id"`
	Title     string                 `json:"title"`
	Questions []QuizQuestionResponse `json:"questions"`
}

// QuizQuestionResponse is a question as shown to students.
type QuizQuestionResponse struct {
	ID      uint     `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// NewQuizDetailResponse hides correct answers and explanations.
func NewQuizDetailResponse(courseID uint, quiz models.Quiz) QuizDetailResponse {
	questions := make([]QuizQuestionResponse, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		options := question.OptionList()
		if options == nil {
			options = []string{}
		}
		questions = append(questions, QuizQuestionResponse{
			ID:      question.ID,
			Prompt:  question.Prompt,
			Options: options,
		})
	}

	return QuizDetailResponse{
		ID:        quiz.ID,
		ModuleID:  quiz.ModuleID,
		CourseID:  courseID,
		Title:     quiz.Title,
		Questions: questions,
	}
}
