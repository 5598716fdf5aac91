package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package that callers are expected to
// handle wraps exactly one of them, so handlers can map with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

var (
	// ErrCourseNotFound indicates the course does not exist.
	ErrCourseNotFound = kindError(ErrNotFound, "course not found")
	// ErrModuleNotFound indicates the module is not part of the course.
	ErrModuleNotFound = kindError(ErrNotFound, "module not found")
	// ErrQuizNotFound indicates the quiz is not part of the module.
	ErrQuizNotFound = kindError(ErrNotFound, "quiz not found")
	// ErrTaskNotFound indicates the task is not part of the module.
	ErrTaskNotFound = kindError(ErrNotFound, "task not found")
	// ErrStudentNotFound indicates the student account does not exist.
	ErrStudentNotFound = kindError(ErrNotFound, "student not found")
	// ErrSubmissionNotFound indicates the submission was not located.
	ErrSubmissionNotFound = kindError(ErrNotFound, "submission not found")
	// ErrReferralCodeNotFound indicates no student owns the referral code.
	ErrReferralCodeNotFound = kindError(ErrNotFound, "referral code not found")

	// ErrNotEnrolled indicates the student has no paid enrollment for the course.
	ErrNotEnrolled = kindError(ErrForbidden, "you are not enrolled in this course")
	// ErrAccountBlocked indicates the account may not earn rewards.
	ErrAccountBlocked = kindError(ErrForbidden, "account is blocked")
	// ErrCourseNotCompleted indicates a certificate was requested before completion.
	ErrCourseNotCompleted = kindError(ErrForbidden, "course is not completed yet")
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = kindError(ErrForbidden, "seeding is disabled")
	// ErrSeedUnauthorized indicates the provided seed token is invalid.
	ErrSeedUnauthorized = kindError(ErrForbidden, "invalid seed token")

	// ErrSelfReferral indicates a student tried to redeem their own code.
	ErrSelfReferral = kindError(ErrInvalidInput, "you cannot use your own referral code")
	// ErrGradeRequired indicates a submission was marked graded without a grade.
	ErrGradeRequired = kindError(ErrInvalidInput, "grade is required when status is graded")

	// ErrReferralAlreadyApplied indicates the student already redeemed a code.
	ErrReferralAlreadyApplied = kindError(ErrConflict, "referral code already applied")
)

type kindErr struct {
	kind error
	msg  string
}

func (e *kindErr) Error() string { return e.msg }

func (e *kindErr) Unwrap() error { return e.kind }

func kindError(kind error, msg string) error {
	return &kindErr{kind: kind, msg: msg}
}

func wrapInternal(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
