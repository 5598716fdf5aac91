package service

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
)

// GradeQuiz scores answers against the quiz answer key. Answers are keyed by the
// question id. Any integral JSON number selects an option, so 1 and 1.0 are the
// same answer; missing, malformed, fractional or out-of-range answers count as
// incorrect.
func GradeQuiz(quiz models.Quiz, answers map[string]json.RawMessage) dto.QuizGrade {
	results := make([]dto.QuestionResult, 0, len(quiz.Questions))
	score := 0

	for _, question := range quiz.Questions {
		answer := selectedOption(answers, question)
		correct := answer != nil && *answer == question.CorrectOption
		if correct {
			score++
		}

		results = append(results, dto.QuestionResult{
			QuestionID:    question.ID,
			UserAnswer:    answer,
			CorrectAnswer: question.CorrectOption,
			IsCorrect:     correct,
			Explanation:   question.Explanation,
		})
	}

	return dto.QuizGrade{
		Score:          score,
		TotalQuestions: len(quiz.Questions),
		Percentage:     percentage(score, len(quiz.Questions)),
		Results:        results,
	}
}

func selectedOption(answers map[string]json.RawMessage, question models.QuizQuestion) *int {
	raw, ok := answers[strconv.FormatUint(uint64(question.ID), 10)]
	if !ok || len(raw) == 0 {
		return nil
	}

	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	if value != math.Trunc(value) || value < 0 || value > math.MaxInt32 {
		return nil
	}
	index := int(value)
	if options := question.OptionList(); options != nil && (index < 0 || index >= len(options)) {
		return nil
	}

	return &index
}
