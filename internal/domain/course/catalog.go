package course

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CreateCategory adds a catalog category
func (s *Service) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	cat := &Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        categorySlug(req.Slug, req.Name),
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	log.Info().Int("category_id", cat.ID).Str("slug", cat.Slug).Msg("category created")
	return cat, nil
}

// UpdateCategory applies the non-nil fields of req
func (s *Service) UpdateCategory(ctx context.Context, id int, req *UpdateCategoryRequest) (*Category, error) {
	cat, err := s.category(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		cat.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		cat.Slug = categorySlug(*req.Slug, cat.Name)
	}
	if req.Description != nil {
		cat.Description = *req.Description
	}
	if req.IsActive != nil {
		cat.IsActive = *req.IsActive
	}
	if err := s.repo.UpdateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes a category that no course references
func (s *Service) DeleteCategory(ctx context.Context, id int) error {
	if _, err := s.category(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountCoursesInCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryHasCourses
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	log.Info().Int("category_id", id).Msg("category deleted")
	return nil
}

func (s *Service) category(ctx context.Context, id int) (*Category, error) {
	cat, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}
	return cat, nil
}

func categorySlug(slug, name string) string {
	if strings.TrimSpace(slug) == "" {
		return Slugify(name)
	}
	return Slugify(slug)
}

// UpdateLesson applies the non-nil fields of req. Course totals follow the published lessons.
func (s *Service) UpdateLesson(ctx context.Context, lessonID uuid.UUID, actor Actor, req *UpdateLessonRequest) (*Lesson, error) {
	l, err := s.managedLesson(ctx, lessonID, actor)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Type != nil {
		l.Type = LessonType(*req.Type)
	}
	if req.Content != nil {
		l.Content = *req.Content
	}
	if req.VideoURL != nil {
		l.VideoURL = req.VideoURL
		if *req.VideoURL == "" {
			l.VideoURL = nil
		}
	}
	if req.VideoDuration != nil {
		l.VideoDuration = *req.VideoDuration
	}
	if req.IsFree != nil {
		l.IsFree = *req.IsFree
	}
	if req.IsPublished != nil {
		l.IsPublished = *req.IsPublished
	}
	l.UpdatedAt = s.now()

	if err := s.repo.UpdateLesson(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteLesson removes a lesson together with its quiz and progress rows
func (s *Service) DeleteLesson(ctx context.Context, lessonID uuid.UUID, actor Actor) error {
	l, err := s.managedLesson(ctx, lessonID, actor)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLesson(ctx, l); err != nil {
		return err
	}
	log.Info().Str("lesson_id", l.ID.String()).Str("course_id", l.CourseID.String()).Msg("lesson deleted")
	return nil
}

// ReorderLessons rewrites the order of a section. lessonIDs must be a
// permutation of the section's lessons.
func (s *Service) ReorderLessons(ctx context.Context, courseID, sectionID uuid.UUID, actor Actor, lessonIDs []uuid.UUID) ([]*Lesson, error) {
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

	all, err := s.repo.ListLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	current := make(map[uuid.UUID]*Lesson)
	for _, l := range all {
		if l.SectionID == sectionID {
			current[l.ID] = l
		}
	}
	if len(lessonIDs) != len(current) {
		return nil, ErrInvalidLessonOrder
	}
	ordered := make([]*Lesson, 0, len(lessonIDs))
	seen := make(map[uuid.UUID]bool, len(lessonIDs))
	for i, id := range lessonIDs {
		l, ok := current[id]
		if !ok || seen[id] {
			return nil, ErrInvalidLessonOrder
		}
		seen[id] = true
		l.SortOrder = i + 1
		ordered = append(ordered, l)
	}

	if err := s.repo.ReorderLessons(ctx, sectionID, lessonIDs); err != nil {
		return nil, err
	}
	return ordered, nil
}

func (s *Service) managedLesson(ctx context.Context, lessonID uuid.UUID, actor Actor) (*Lesson, error) {
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
	return l, nil
}
