package models

import (
	"encoding/json"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course is an ordered sequence of modules offered to enrolled students.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Slug        string    `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Thumbnail   string    `gorm:"size:512" json:"thumbnail"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Modules     []Module  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"modules"`
}

// BeforeSave derives a URL slug from the title when none was supplied.
func (c *Course) BeforeSave(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Title)
	}
	return nil
}

// FindModule returns the module with the given id, if it belongs to the course.
func (c Course) FindModule(id uint) (Module, bool) {
	for _, module := range c.Modules {
		if module.ID == id {
			return module, true
		}
	}
	return Module{}, false
}

// Module groups quizzes and tasks within a course.
type Module struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"index;not null" json:"course_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Quizzes   []Quiz    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"quizzes"`
	Tasks     []Task    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tasks"`
}

// FindQuiz returns the quiz with the given id, if it belongs to the module.
func (m Module) FindQuiz(id uint) (Quiz, bool) {
	for _, quiz := range m.Quizzes {
		if quiz.ID == id {
			return quiz, true
		}
	}
	return Quiz{}, false
}

// FindTask returns the task with the given id, if it belongs to the module.
func (m Module) FindTask(id uint) (Task, bool) {
	for _, task := range m.Tasks {
		if task.ID == id {
			return task, true
		}
	}
	return Task{}, false
}

// Quiz is a graded multiple choice lesson.
type Quiz struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ModuleID  uint           `gorm:"index;not null" json:"module_id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Position  int            `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Questions []QuizQuestion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
}

// QuizQuestion is a single question with its answer key.
type QuizQuestion struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	QuizID        uint           `gorm:"index;not null" json:"quiz_id"`
	Prompt        string         `gorm:"type:text;not null" json:"prompt"`
	Options       datatypes.JSON `gorm:"type:json" json:"-"`
	CorrectOption int            `gorm:"not null" json:"-"`
	Explanation   string         `gorm:"type:text" json:"explanation"`
	Position      int            `gorm:"not null;default:0" json:"position"`
}

// SetOptions serializes the answer options into the JSON storage column.
func (q *QuizQuestion) SetOptions(options []string) {
	data, err := json.Marshal(options)
	if err != nil {
		q.Options = datatypes.JSON([]byte("[]"))
		return
	}
	q.Options = datatypes.JSON(data)
}

// OptionList deserializes the stored answer options.
func (q QuizQuestion) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}

	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil
	}

	return options
}

// Task is an assignment-type lesson submitted as an external link.
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ModuleID    uint      `gorm:"index;not null" json:"module_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
