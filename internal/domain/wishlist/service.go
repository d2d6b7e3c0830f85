package wishlist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const statusPublished = "PUBLISHED"

// Service manages per-user wishlists
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates wishlist service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Add saves a published course to the wishlist. Adding it twice returns the original item.
func (s *Service) Add(ctx context.Context, userID, courseID uuid.UUID) (*Item, error) {
	status, err := s.repo.CourseStatus(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if status != statusPublished {
		return nil, ErrCourseNotFound
	}

	item := &Item{ID: uuid.New(), UserID: userID, CourseID: courseID, CreatedAt: s.now()}
	if err := s.repo.Add(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove drops the course from the wishlist; removing an absent course is not an error.
func (s *Service) Remove(ctx context.Context, userID, courseID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, courseID)
}

// List returns the wishlist, most recently added first
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Entry, error) {
	out, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Entry{}
	}
	return out, nil
}
