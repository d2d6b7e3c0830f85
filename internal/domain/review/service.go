package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/statistics"
)

// Service handles review business logic. Every mutation refreshes the course statistics.
type Service struct {
	repo  Repository
	stats statistics.Recomputer
	now   func() time.Time
}

// NewService creates review service
func NewService(repo Repository, stats statistics.Recomputer) *Service {
	return &Service{repo: repo, stats: stats, now: time.Now}
}

// Create stores the user's single review of a course they are enrolled in
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *CreateRequest) (*Review, error) {
	course, err := s.repo.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}

	enrollmentID, err := s.repo.FindEnrollment(ctx, userID, course.ID)
	if err != nil {
		return nil, err
	}
	if enrollmentID == uuid.Nil {
		return nil, ErrNotEnrolled
	}

	now := s.now()
	rv := &Review{
		ID:           uuid.New(),
		UserID:       userID,
		CourseID:     course.ID,
		EnrollmentID: enrollmentID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		IsApproved:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	log.Info().
		Str("review_id", rv.ID.String()).
		Str("course_id", rv.CourseID.String()).
		Int("rating", rv.Rating).
		Msg("review created")

	statistics.RecomputeAfterCommit(ctx, s.stats, rv.CourseID)
	return rv, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	return rv, nil
}

// Update changes rating or comment of the caller's own review
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, req *UpdateRequest) (*Review, error) {
	rv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.UserID != userID {
		return nil, ErrNotAuthor
	}

	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	if req.Comment != nil {
		rv.Comment = *req.Comment
	}
	rv.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, rv); err != nil {
		return nil, err
	}

	statistics.RecomputeAfterCommit(ctx, s.stats, rv.CourseID)
	return rv, nil
}

// Delete removes a review. Authors delete their own; admins delete any.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID, isAdmin bool) error {
	rv, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if rv.UserID != userID && !isAdmin {
		return ErrNotAuthor
	}

	if err := s.repo.Delete(ctx, rv.ID); err != nil {
		return err
	}
	log.Info().Str("review_id", rv.ID.String()).Str("by", userID.String()).Msg("review deleted")

	statistics.RecomputeAfterCommit(ctx, s.stats, rv.CourseID)
	return nil
}

// Reply sets the course instructor's answer to a review, replacing any earlier one
func (s *Service) Reply(ctx context.Context, id, instructorID uuid.UUID, reply string) (*Review, error) {
	rv, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := s.repo.GetCourse(ctx, rv.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.InstructorID != instructorID {
		return nil, ErrNotCourseOwner
	}

	now := s.now()
	if err := s.repo.SetReply(ctx, rv.ID, reply, now); err != nil {
		return nil, err
	}
	rv.InstructorReply = &reply
	rv.RepliedAt = &now
	return rv, nil
}

// ListByCourse returns a page of approved reviews with the rating summary
func (s *Service) ListByCourse(ctx context.Context, courseID uuid.UUID, page, limit int) (*CourseReviews, int, error) {
	reviews, total, err := s.repo.ListApproved(ctx, courseID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	if reviews == nil {
		reviews = []*WithAuthor{}
	}

	dist, err := s.repo.Distribution(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}
	return &CourseReviews{Summary: summarize(dist), Reviews: reviews}, total, nil
}

func summarize(dist map[int]int) Summary {
	sum := Summary{AverageRating: decimal.Zero, Distribution: make(map[int]int, 5)}
	points := 0
	for rating := 5; rating >= 1; rating-- {
		n := dist[rating]
		sum.Distribution[rating] = n
		sum.TotalReviews += n
		points += rating * n
	}
	if sum.TotalReviews > 0 {
		sum.AverageRating = decimal.NewFromInt(int64(points)).DivRound(decimal.NewFromInt(int64(sum.TotalReviews)), 2)
	}
	return sum
}
