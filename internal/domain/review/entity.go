package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Review is a student's rating of a course they are enrolled in
type Review struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	UserID          uuid.UUID  `db:"user_id" json:"userId"`
	CourseID        uuid.UUID  `db:"course_id" json:"courseId"`
	EnrollmentID    uuid.UUID  `db:"enrollment_id" json:"enrollmentId"`
	Rating          int        `db:"rating" json:"rating"`
	Comment         string     `db:"comment" json:"comment"`
	IsApproved      bool       `db:"is_approved" json:"isApproved"`
	InstructorReply *string    `db:"instructor_reply" json:"instructorReply,omitempty"`
	RepliedAt       *time.Time `db:"replied_at" json:"repliedAt,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// WithAuthor is a review joined with its author's display name
type WithAuthor struct {
	Review
	AuthorName string `db:"author_name" json:"authorName"`
}

// CourseRef is the part of a course the review rules need
type CourseRef struct {
	ID           uuid.UUID `db:"id"`
	InstructorID uuid.UUID `db:"instructor_id"`
}

// Summary aggregates the approved reviews of a course
type Summary struct {
	AverageRating decimal.Decimal `json:"averageRating"`
	TotalReviews  int             `json:"totalReviews"`
	Distribution  map[int]int     `json:"distribution"`
}

// CourseReviews is the public review page of a course
type CourseReviews struct {
	Summary Summary       `json:"summary"`
	Reviews []*WithAuthor `json:"reviews"`
}

// CreateRequest for POST /reviews
type CreateRequest struct {
	CourseID uuid.UUID `json:"courseId" validate:"required"`
	Rating   int       `json:"rating" validate:"required,gte=1,lte=5"`
	Comment  string    `json:"comment" validate:"max=2000"`
}

// UpdateRequest for PUT /reviews/{id}
type UpdateRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// ReplyRequest for POST /reviews/{id}/reply
type ReplyRequest struct {
	Reply string `json:"reply" validate:"required,max=2000"`
}
