package enrollment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents enrollment status
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
)

// IsValid checks if status is one of the known values
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusExpired:
		return true
	}
	return false
}

const (
	courseStatusPublished  = "PUBLISHED"
	paymentStatusCompleted = "COMPLETED"
)

// Enrollment is a user's access grant to a course
type Enrollment struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"userId"`
	CourseID        uuid.UUID       `db:"course_id" json:"courseId"`
	PaymentID       uuid.NullUUID   `db:"payment_id" json:"paymentId"`
	Status          Status          `db:"status" json:"status"`
	ProgressPercent decimal.Decimal `db:"progress_percent" json:"progressPercent"`
	EnrolledAt      time.Time       `db:"enrolled_at" json:"enrolledAt"`
	CompletedAt     *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
}

// LessonProgress tracks one lesson within an enrollment
type LessonProgress struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	EnrollmentID uuid.UUID  `db:"enrollment_id" json:"enrollmentId"`
	LessonID     uuid.UUID  `db:"lesson_id" json:"lessonId"`
	UserID       uuid.UUID  `db:"user_id" json:"userId"`
	IsCompleted  bool       `db:"is_completed" json:"isCompleted"`
	WatchTime    int        `db:"watch_time" json:"watchTime"`
	LastPosition int        `db:"last_position" json:"lastPosition"`
	CompletedAt  *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// CourseRef is the slice of a course enrollment rules look at
type CourseRef struct {
	ID            uuid.UUID           `db:"id"`
	Title         string              `db:"title"`
	Status        string              `db:"status"`
	Price         decimal.Decimal     `db:"price"`
	DiscountPrice decimal.NullDecimal `db:"discount_price"`
}

// LessonRef resolves a lesson to its course
type LessonRef struct {
	ID          uuid.UUID `db:"id"`
	CourseID    uuid.UUID `db:"course_id"`
	IsPublished bool      `db:"is_published"`
}

// PaymentRef is the slice of a payment enrollment rules look at
type PaymentRef struct {
	ID       uuid.UUID `db:"id"`
	UserID   uuid.UUID `db:"user_id"`
	CourseID uuid.UUID `db:"course_id"`
	Status   string    `db:"status"`
}

// ProgressUpdate carries the optional fields of a progress call.
// Nil fields keep their stored value.
type ProgressUpdate struct {
	WatchTime    *int  `json:"watchTime" validate:"omitempty,gte=0"`
	LastPosition *int  `json:"lastPosition" validate:"omitempty,gte=0"`
	IsCompleted  *bool `json:"isCompleted"`
}

// EnrollmentWithCourse is a list row joined with course display fields
type EnrollmentWithCourse struct {
	Enrollment
	CourseTitle     string  `db:"course_title" json:"courseTitle"`
	CourseSlug      string  `db:"course_slug" json:"courseSlug"`
	CourseThumbnail *string `db:"course_thumbnail" json:"courseThumbnail,omitempty"`
}

// Detail is an enrollment with its lesson progress rows
type Detail struct {
	*Enrollment
	Progress []*LessonProgress `json:"progress"`
}

// ProgressResult is returned after a progress update
type ProgressResult struct {
	Progress        *LessonProgress `json:"progress"`
	ProgressPercent decimal.Decimal `json:"progressPercent"`
	Status          Status          `json:"status"`
}
