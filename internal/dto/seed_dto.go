package dto

// SeedCatalogRequest describes courses to upsert into the catalog.
type SeedCatalogRequest struct {
	Courses []SeedCourse `json:"courses" validate:"required,min=1,dive"`
}

// SeedCourse is a course definition with its nested modules.
type SeedCourse struct {
	Title       string       `json:"title" validate:"required,min=3"`
	Slug        string       `json:"slug" validate:"omitempty"`
	Description string       `json:"description"`
	Thumbnail   string       `json:"thumbnail" validate:"omitempty,url"`
	Modules     []SeedModule `json:"modules" validate:"dive"`
}

// SeedModule is a module definition.
type SeedModule struct {
	Title   string     `json:"title" validate:"required"`
	Quizzes []SeedQuiz `json:"quizzes" validate:"dive"`
	Tasks   []SeedTask `json:"tasks" validate:"dive"`
}

// SeedQuiz is a quiz definition with its answer key.
type SeedQuiz struct {
	Title     string         `json:"title" validate:"required"`
	Questions []SeedQuestion `json:"questions" validate:"dive"`
}

// SeedQuestion is a multiple choice question.
type SeedQuestion struct {
	Prompt        string   `json:"prompt" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectOption int      `json:"correct_option" validate:"gte=0"`
	Explanation   string   `json:"explanation"`
}

// SeedTask is an assignment definition.
type SeedTask struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// SeedCatalogResponse reports how many courses were created or refreshed.
type SeedCatalogResponse struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Slugs   []string `json:"slugs"`
}
