package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item marks a course the user wants to buy later
type Item struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	CourseID  uuid.UUID `db:"course_id" json:"courseId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Entry is a wishlist item joined with the course card shown in the list
type Entry struct {
	ID             uuid.UUID           `db:"id" json:"id"`
	CourseID       uuid.UUID           `db:"course_id" json:"courseId"`
	Title          string              `db:"title" json:"title"`
	Slug           string              `db:"slug" json:"slug"`
	ThumbnailURL   *string             `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	Price          decimal.Decimal     `db:"price" json:"price"`
	DiscountPrice  decimal.NullDecimal `db:"discount_price" json:"discountPrice"`
	Level          string              `db:"level" json:"level"`
	InstructorName string              `db:"instructor_name" json:"instructorName"`
	CategoryName   *string             `db:"category_name" json:"categoryName,omitempty"`
	AddedAt        time.Time           `db:"created_at" json:"addedAt"`
}

// AddRequest for POST /wishlist
type AddRequest struct {
	CourseID uuid.UUID `json:"courseId" validate:"required"`
}
