package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/quiz"
	"github.com/learnhub/learnhub-api/internal/domain/statistics"
	"github.com/learnhub/learnhub-api/internal/pkg/imaging"
	"github.com/learnhub/learnhub-api/internal/pkg/money"
	"github.com/learnhub/learnhub-api/internal/pkg/storage"
)

const defaultPassingScore = 70

// StatisticsReader loads the aggregate row shown on a course page
type StatisticsReader interface {
	Get(ctx context.Context, courseID uuid.UUID) (*statistics.CourseStatistics, error)
}

// Service handles catalog business logic
type Service struct {
	repo    Repository
	stats   StatisticsReader
	storage storage.Storage
	images  *imaging.Processor
	now     func() time.Time
}

// NewService creates course service. store and images may be nil when covers are disabled.
func NewService(repo Repository, stats StatisticsReader, store storage.Storage, images *imaging.Processor) *Service {
	return &Service{repo: repo, stats: stats, storage: store, images: images, now: time.Now}
}

// Actor is the caller of a management operation
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func (a Actor) canManage(c *Course) bool {
	return a.IsAdmin || c.IsOwnedBy(a.UserID)
}

func validatePrices(price decimal.Decimal, discount decimal.NullDecimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	if discount.Valid && (discount.Decimal.IsNegative() || discount.Decimal.GreaterThan(price)) {
		return ErrInvalidPrice
	}
	return nil
}

// Create creates a DRAFT course owned by instructorID
func (s *Service) Create(ctx context.Context, instructorID uuid.UUID, req *CreateCourseRequest) (*Course, error) {
	c := &Course{
		ID:               uuid.New(),
		InstructorID:     instructorID,
		CategoryID:       req.CategoryID,
		Title:            req.Title,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            money.Round(req.Price),
		Level:            LevelAll,
		Status:           StatusDraft,
	}
	if req.Level != "" {
		c.Level = Level(req.Level)
	}
	if req.DiscountPrice != nil {
		c.DiscountPrice = decimal.NewNullDecimal(money.Round(*req.DiscountPrice))
	}
	if err := validatePrices(c.Price, c.DiscountPrice); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	c.Slug = slug

	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	log.Info().
		Str("course_id", c.ID.String()).
		Str("instructor_id", instructorID.String()).
		Str("slug", c.Slug).
		Msg("course created")
	return c, nil
}

func (s *Service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	for n := 1; ; n++ {
		candidate := withSuffix(base, n)
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func (s *Service) loadManaged(ctx context.Context, id uuid.UUID, actor Actor) (*Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}
	if !actor.canManage(c) {
		return nil, ErrNotOwner
	}
	return c, nil
}

// Update applies the non-nil fields of req
func (s *Service) Update(ctx context.Context, id uuid.UUID, actor Actor, req *UpdateCourseRequest) (*Course, error) {
	c, err := s.loadManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.ShortDescription != nil {
		c.ShortDescription = *req.ShortDescription
	}
	if req.CategoryID != nil {
		c.CategoryID = req.CategoryID
	}
	if req.Level != nil {
		c.Level = Level(*req.Level)
	}
	if req.Price != nil {
		c.Price = money.Round(*req.Price)
	}
	switch {
	case req.ClearDiscount:
		c.DiscountPrice = decimal.NullDecimal{}
	case req.DiscountPrice != nil:
		c.DiscountPrice = decimal.NewNullDecimal(money.Round(*req.DiscountPrice))
	}
	if err := validatePrices(c.Price, c.DiscountPrice); err != nil {
		return nil, err
	}

	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a course that nobody is enrolled in
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	c, err := s.loadManaged(ctx, id, actor)
	if err != nil {
		return err
	}

	n, err := s.repo.CountEnrollments(ctx, c.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCourseHasEnrollments
	}

	if err := s.repo.Delete(ctx, c.ID); err != nil {
		return err
	}
	log.Info().Str("course_id", c.ID.String()).Str("by", actor.UserID.String()).Msg("course deleted")
	return nil
}

// List returns published courses matching filter
func (s *Service) List(ctx context.Context, filter Filter, page, limit int) ([]*Course, int, error) {
	published := StatusPublished
	filter.Status = &published
	return s.list(ctx, &filter, page, limit)
}

// ListPending returns courses awaiting moderation
func (s *Service) ListPending(ctx context.Context, page, limit int) ([]*Course, int, error) {
	pending := StatusPending
	return s.list(ctx, &Filter{Status: &pending}, page, limit)
}

func (s *Service) list(ctx context.Context, filter *Filter, page, limit int) ([]*Course, int, error) {
	courses, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	if courses == nil {
		courses = []*Course{}
	}
	return courses, total, nil
}

// ListMine returns every course of an instructor regardless of status
func (s *Service) ListMine(ctx context.Context, instructorID uuid.UUID, page, limit int) ([]*Course, int, error) {
	courses, total, err := s.repo.ListByInstructor(ctx, instructorID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	if courses == nil {
		courses = []*Course{}
	}
	return courses, total, nil
}

// GetBySlug returns the course page. Unpublished courses are visible to their
// owner and admins only; other viewers see published lessons without paid content.
func (s *Service) GetBySlug(ctx context.Context, slug string, viewer Actor) (*Detail, error) {
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}
	manager := viewer.canManage(c)
	if c.Status != StatusPublished && !manager {
		return nil, ErrCourseNotFound
	}

	sections, err := s.curriculum(ctx, c.ID, manager)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Course: c, Sections: sections}
	if s.stats != nil {
		if detail.Statistics, err = s.stats.Get(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func (s *Service) curriculum(ctx context.Context, courseID uuid.UUID, full bool) ([]*Section, error) {
	sections, err := s.repo.ListSections(ctx, courseID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.repo.ListLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	bySection := make(map[uuid.UUID]*Section, len(sections))
	for _, sec := range sections {
		sec.Lessons = []*Lesson{}
		bySection[sec.ID] = sec
	}
	for _, l := range lessons {
		if !full {
			if !l.IsPublished {
				continue
			}
			if !l.IsFree {
				l.Content = ""
				l.VideoURL = nil
			}
		}
		if sec, ok := bySection[l.SectionID]; ok {
			sec.Lessons = append(sec.Lessons, l)
		}
	}
	if sections == nil {
		sections = []*Section{}
	}
	return sections, nil
}

// GetLesson returns lesson content to enrolled students, the course owner and
// admins. Free published lessons are open to every authenticated user.
func (s *Service) GetLesson(ctx context.Context, lessonID uuid.UUID, viewer Actor) (*Lesson, error) {
	l, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLessonNotFound
	}
	c, err := s.repo.GetByID(ctx, l.CourseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}
	if viewer.canManage(c) {
		return l, nil
	}
	if !l.IsPublished || c.Status != StatusPublished {
		return nil, ErrLessonNotFound
	}
	if l.IsFree {
		return l, nil
	}

	enrolled, err := s.repo.IsEnrolled(ctx, viewer.UserID, c.ID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}
	return l, nil
}

// Publish submits a DRAFT or REJECTED course for moderation
func (s *Service) Publish(ctx context.Context, id uuid.UUID, actor Actor) (*Course, error) {
	c, err := s.loadManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusDraft && c.Status != StatusRejected {
		return nil, ErrInvalidStatus
	}

	n, err := s.repo.CountLessons(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNoLessons
	}

	if err := s.repo.UpdateStatus(ctx, c.ID, StatusPending, nil); err != nil {
		return nil, err
	}
	c.Status = StatusPending
	log.Info().Str("course_id", c.ID.String()).Msg("course submitted for review")
	return c, nil
}

// Approve publishes a PENDING course
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*Course, error) {
	c, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, c.ID, StatusPublished, &now); err != nil {
		return nil, err
	}
	c.Status = StatusPublished
	c.PublishedAt = &now
	log.Info().Str("course_id", c.ID.String()).Msg("course approved")
	return c, nil
}

// Reject sends a PENDING course back to its author
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*Course, error) {
	c, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, c.ID, StatusRejected, nil); err != nil {
		return nil, err
	}
	c.Status = StatusRejected
	log.Info().Str("course_id", c.ID.String()).Str("reason", reason).Msg("course rejected")
	return c, nil
}

func (s *Service) pending(ctx context.Context, id uuid.UUID) (*Course, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}
	if c.Status != StatusPending {
		return nil, ErrInvalidStatus
	}
	return c, nil
}

// Categories lists catalog categories. Inactive ones are only included on request.
func (s *Service) Categories(ctx context.Context, includeInactive bool) ([]*Category, error) {
	out, err := s.repo.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Category{}
	}
	return out, nil
}

// CreateSection appends a section to the course
func (s *Service) CreateSection(ctx context.Context, courseID uuid.UUID, actor Actor, req *CreateSectionRequest) (*Section, error) {
	if _, err := s.loadManaged(ctx, courseID, actor); err != nil {
		return nil, err
	}

	sec := &Section{
		ID:          uuid.New(),
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		Lessons:     []*Lesson{},
	}
	if err := s.repo.CreateSection(ctx, sec); err != nil {
		return nil, err
	}
	return sec, nil
}

// CreateLesson appends a lesson to a section of the course
func (s *Service) CreateLesson(ctx context.Context, courseID, sectionID uuid.UUID, actor Actor, req *CreateLessonRequest) (*Lesson, error) {
	if _, err := s.loadManaged(ctx, courseID, actor); err != nil {
		return nil, err
	}
	sec, err := s.repo.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if sec == nil || sec.CourseID != courseID {
		return nil, ErrSectionNotFound
	}

	now := s.now()
	l := &Lesson{
		ID:            uuid.New(),
		SectionID:     sectionID,
		CourseID:      courseID,
		Title:         req.Title,
		Type:          LessonVideo,
		Content:       req.Content,
		VideoURL:      req.VideoURL,
		VideoDuration: req.VideoDuration,
		IsFree:        req.IsFree,
		IsPublished:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Type != "" {
		l.Type = LessonType(req.Type)
	}
	if req.IsPublished != nil {
		l.IsPublished = *req.IsPublished
	}

	if err := s.repo.CreateLesson(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// CreateQuiz attaches a quiz to a lesson; a lesson has at most one quiz
func (s *Service) CreateQuiz(ctx context.Context, lessonID uuid.UUID, actor Actor, req *CreateQuizRequest) (*quiz.Quiz, error) {
	l, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLessonNotFound
	}
	if _, err := s.loadManaged(ctx, l.CourseID, actor); err != nil {
		return nil, err
	}

	q := &quiz.Quiz{
		ID:           uuid.New(),
		LessonID:     lessonID,
		CourseID:     l.CourseID,
		PassingScore: defaultPassingScore,
		TimeLimit:    req.TimeLimit,
		MaxAttempts:  req.MaxAttempts,
		CreatedAt:    s.now(),
		Questions:    []*quiz.Question{},
	}
	if req.PassingScore != nil {
		q.PassingScore = *req.PassingScore
	}

	if err := s.repo.CreateQuiz(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// AddQuestion appends a question to the quiz
func (s *Service) AddQuestion(ctx context.Context, quizID uuid.UUID, actor Actor, req *AddQuestionRequest) (*quiz.Question, error) {
	q, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuizNotFound
	}
	if _, err := s.loadManaged(ctx, q.CourseID, actor); err != nil {
		return nil, err
	}

	qt := quiz.QuestionSingleChoice
	if req.QuestionType != "" {
		qt = quiz.QuestionType(req.QuestionType)
	}
	if err := checkAnswers(qt, req.Options, req.CorrectAnswers); err != nil {
		return nil, err
	}

	question := &quiz.Question{
		ID:             uuid.New(),
		QuizID:         quizID,
		Question:       req.Question,
		QuestionType:   qt,
		Options:        req.Options,
		CorrectAnswers: req.CorrectAnswers,
		Explanation:    req.Explanation,
		Points:         1,
	}
	if req.Points != nil {
		question.Points = *req.Points
	}

	if err := s.repo.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func checkAnswers(qt quiz.QuestionType, options []string, correct []int) error {
	seen := make(map[int]bool, len(correct))
	for _, idx := range correct {
		if idx < 0 || idx >= len(options) || seen[idx] {
			return ErrInvalidAnswers
		}
		seen[idx] = true
	}
	switch qt {
	case quiz.QuestionTrueFalse:
		if len(options) != 2 || len(correct) != 1 {
			return ErrInvalidAnswers
		}
	case quiz.QuestionSingleChoice:
		if len(correct) != 1 {
			return ErrInvalidAnswers
		}
	}
	return nil
}
