package statistics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CourseStatistics is the denormalized per-course aggregate.
// It is always rebuilt from enrollments, reviews and payments.
type CourseStatistics struct {
	CourseID         uuid.UUID       `db:"course_id" json:"courseId"`
	TotalEnrollments int             `db:"total_enrollments" json:"totalEnrollments"`
	TotalReviews     int             `db:"total_reviews" json:"totalReviews"`
	AverageRating    decimal.Decimal `db:"average_rating" json:"averageRating"`
	TotalRevenue     decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`
}
