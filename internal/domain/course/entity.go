package course

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/statistics"
	"github.com/learnhub/learnhub-api/internal/pkg/money"
)

// Status represents course moderation status
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusPublished Status = "PUBLISHED"
	StatusRejected  Status = "REJECTED"
	StatusArchived  Status = "ARCHIVED"
)

// Level represents course difficulty
type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
	LevelAll          Level = "ALL_LEVELS"
)

// LessonType represents lesson content kind
type LessonType string

const (
	LessonVideo      LessonType = "VIDEO"
	LessonText       LessonType = "TEXT"
	LessonQuiz       LessonType = "QUIZ"
	LessonAssignment LessonType = "ASSIGNMENT"
)

// Course is a catalog entry owned by an instructor
type Course struct {
	ID               uuid.UUID           `db:"id" json:"id"`
	InstructorID     uuid.UUID           `db:"instructor_id" json:"instructorId"`
	CategoryID       *int                `db:"category_id" json:"categoryId,omitempty"`
	Title            string              `db:"title" json:"title"`
	Slug             string              `db:"slug" json:"slug"`
	Description      string              `db:"description" json:"description"`
	ShortDescription string              `db:"short_description" json:"shortDescription"`
	Price            decimal.Decimal     `db:"price" json:"price"`
	DiscountPrice    decimal.NullDecimal `db:"discount_price" json:"discountPrice"`
	Level            Level               `db:"level" json:"level"`
	Status           Status              `db:"status" json:"status"`
	ThumbnailURL     *string             `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	CoverURL         *string             `db:"cover_url" json:"coverUrl,omitempty"`
	TotalLessons     int                 `db:"total_lessons" json:"totalLessons"`
	TotalDuration    int                 `db:"total_duration" json:"totalDuration"`
	PublishedAt      *time.Time          `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updatedAt"`
}

// EffectivePrice is the discount price when set, otherwise the list price
func (c *Course) EffectivePrice() decimal.Decimal {
	return money.Effective(c.Price, c.DiscountPrice)
}

// IsOwnedBy reports whether userID authored the course
func (c *Course) IsOwnedBy(userID uuid.UUID) bool {
	return c.InstructorID == userID
}

// Category groups courses in the catalog
type Category struct {
	ID          int    `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Slug        string `db:"slug" json:"slug"`
	Description string `db:"description" json:"description"`
	IsActive    bool   `db:"is_active" json:"isActive"`
}

// Section is an ordered chapter of a course
type Section struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CourseID    uuid.UUID `db:"course_id" json:"courseId"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	SortOrder   int       `db:"sort_order" json:"sortOrder"`
	Lessons     []*Lesson `db:"-" json:"lessons"`
}

// Lesson is one unit of content inside a section
type Lesson struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	SectionID     uuid.UUID  `db:"section_id" json:"sectionId"`
	CourseID      uuid.UUID  `db:"course_id" json:"courseId"`
	Title         string     `db:"title" json:"title"`
	Type          LessonType `db:"type" json:"type"`
	Content       string     `db:"content" json:"content,omitempty"`
	VideoURL      *string    `db:"video_url" json:"videoUrl,omitempty"`
	VideoDuration int        `db:"video_duration" json:"videoDuration"`
	IsFree        bool       `db:"is_free" json:"isFree"`
	IsPublished   bool       `db:"is_published" json:"isPublished"`
	SortOrder     int        `db:"sort_order" json:"sortOrder"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// Detail is a course with its curriculum and statistics
type Detail struct {
	*Course
	Sections   []*Section                   `json:"sections"`
	Statistics *statistics.CourseStatistics `json:"statistics"`
}

// Filter narrows the public course listing
type Filter struct {
	CategoryID *int
	Level      *Level
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	Status     *Status
}
