package course

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCourseRequest for POST /courses
type CreateCourseRequest struct {
	Title            string           `json:"title" validate:"required,min=3,max=255"`
	Description      string           `json:"description" validate:"max=20000"`
	ShortDescription string           `json:"shortDescription" validate:"max=500"`
	CategoryID       *int             `json:"categoryId" validate:"omitempty,gt=0"`
	Price            decimal.Decimal  `json:"price"`
	DiscountPrice    *decimal.Decimal `json:"discountPrice"`
	Level            string           `json:"level" validate:"course_level"`
}

// UpdateCourseRequest for PUT /courses/{id}; nil fields are left unchanged
type UpdateCourseRequest struct {
	Title            *string          `json:"title" validate:"omitempty,min=3,max=255"`
	Description      *string          `json:"description" validate:"omitempty,max=20000"`
	ShortDescription *string          `json:"shortDescription" validate:"omitempty,max=500"`
	CategoryID       *int             `json:"categoryId" validate:"omitempty,gt=0"`
	Price            *decimal.Decimal `json:"price"`
	DiscountPrice    *decimal.Decimal `json:"discountPrice"`
	ClearDiscount    bool             `json:"clearDiscount"`
	Level            *string          `json:"level" validate:"omitempty,course_level"`
}

// CreateSectionRequest for POST /courses/{id}/sections
type CreateSectionRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

// CreateLessonRequest for POST /courses/{id}/sections/{sectionId}/lessons
type CreateLessonRequest struct {
	Title         string  `json:"title" validate:"required,max=255"`
	Type          string  `json:"type" validate:"lesson_type"`
	Content       string  `json:"content"`
	VideoURL      *string `json:"videoUrl" validate:"omitempty,url"`
	VideoDuration int     `json:"videoDuration" validate:"gte=0"`
	IsFree        bool    `json:"isFree"`
	IsPublished   *bool   `json:"isPublished"`
}

// UpdateLessonRequest for PUT /courses/lessons/{lessonId}; nil fields are left unchanged
type UpdateLessonRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=255"`
	Type          *string `json:"type" validate:"omitempty,lesson_type"`
	Content       *string `json:"content"`
	VideoURL      *string `json:"videoUrl" validate:"omitempty,url"`
	VideoDuration *int    `json:"videoDuration" validate:"omitempty,gte=0"`
	IsFree        *bool   `json:"isFree"`
	IsPublished   *bool   `json:"isPublished"`
}

// ReorderLessonsRequest for PUT /courses/{id}/sections/{sectionId}/lessons/reorder
type ReorderLessonsRequest struct {
	LessonIDs []uuid.UUID `json:"lessonIds" validate:"required,min=1"`
}

// CreateCategoryRequest for POST /courses/categories. Slug defaults to the slugified name.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateCategoryRequest for PUT /courses/categories/{categoryId}
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsActive    *bool   `json:"isActive"`
}

// CreateQuizRequest for POST /courses/lessons/{lessonId}/quiz
type CreateQuizRequest struct {
	PassingScore *int `json:"passingScore" validate:"omitempty,gte=0,lte=100"`
	TimeLimit    *int `json:"timeLimit" validate:"omitempty,gt=0"`
	MaxAttempts  *int `json:"maxAttempts" validate:"omitempty,gt=0"`
}

// AddQuestionRequest for POST /courses/quizzes/{quizId}/questions
type AddQuestionRequest struct {
	Question       string   `json:"question" validate:"required"`
	QuestionType   string   `json:"questionType" validate:"question_type"`
	Options        []string `json:"options" validate:"required,min=2,max=10,dive,required"`
	CorrectAnswers []int    `json:"correctAnswers" validate:"required,min=1,dive,gte=0"`
	Explanation    string   `json:"explanation"`
	Points         *int     `json:"points" validate:"omitempty,gte=0"`
}

// RejectRequest for POST /courses/{id}/reject
type RejectRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}
