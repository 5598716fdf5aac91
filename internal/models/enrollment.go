package models

import "time"

const (
	// PaymentStatusPaid marks an enrollment that grants access to the course.
	PaymentStatusPaid = "paid"
	// PaymentStatusPending marks an enrollment still awaiting payment.
	PaymentStatusPending = "pending"
)

const (
	// CompletionItemQuiz identifies a completed quiz.
	CompletionItemQuiz = "quiz"
	// CompletionItemTask identifies a completed task.
	CompletionItemTask = "task"
)

// Enrollment links a student to a course and tracks their progress through it.
type Enrollment struct {
	ID                 uint                   `gorm:"primaryKey" json:"id"`
	StudentID          uint                   `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID           uint                   `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	PaymentStatus      string                 `gorm:"size:32;not null;default:pending" json:"payment_status"`
	ProgressPercentage int                    `gorm:"not null;default:0" json:"progress_percentage"`
	IsCompleted        bool                   `gorm:"not null;default:false" json:"is_completed"`
	CompletionDate     *time.Time             `json:"completion_date"`
	LastAccessedAt     *time.Time             `json:"last_accessed_at"`
	LastModuleID       *uint                  `json:"last_module_id"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Course             Course                 `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
	Student            Student                `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Completions        []EnrollmentCompletion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// EnrollmentCompletion records one completed quiz or task. The unique index makes
// "first completion" detectable with a single conditional insert.
type EnrollmentCompletion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID uint      `gorm:"not null;uniqueIndex:idx_completion_item" json:"enrollment_id"`
	ItemType     string    `gorm:"size:16;not null;uniqueIndex:idx_completion_item" json:"item_type"`
	ItemID       uint      `gorm:"not null;uniqueIndex:idx_completion_item" json:"item_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsPaid reports whether the enrollment grants access to the course.
func (e Enrollment) IsPaid() bool {
	return e.PaymentStatus == PaymentStatusPaid
}

// CompletedQuizIDs returns the set of completed quiz identifiers.
func (e Enrollment) CompletedQuizIDs() map[uint]struct{} {
	return e.completedSet(CompletionItemQuiz)
}

// CompletedTaskIDs returns the set of completed task identifiers.
func (e Enrollment) CompletedTaskIDs() map[uint]struct{} {
	return e.completedSet(CompletionItemTask)
}

func (e Enrollment) completedSet(itemType string) map[uint]struct{} {
	set := make(map[uint]struct{})
	for _, completion := range e.Completions {
		if completion.ItemType == itemType {
			set[completion.ItemID] = struct{}{}
		}
	}
	return set
}
