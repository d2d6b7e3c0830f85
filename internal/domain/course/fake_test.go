package course

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/domain/quiz"
	"github.com/learnhub/learnhub-api/internal/pkg/money"
)

type fakeRepo struct {
	mu          sync.Mutex
	courses     map[uuid.UUID]*Course
	sections    map[uuid.UUID]*Section
	lessons     map[uuid.UUID]*Lesson
	quizzes     map[uuid.UUID]*quiz.Quiz
	questions   []*quiz.Question
	enrollments map[[2]uuid.UUID]bool
	statsRows   map[uuid.UUID]bool
	categories  map[int]*Category
	nextCatID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:     map[uuid.UUID]*Course{},
		sections:    map[uuid.UUID]*Section{},
		lessons:     map[uuid.UUID]*Lesson{},
		quizzes:     map[uuid.UUID]*quiz.Quiz{},
		enrollments: map[[2]uuid.UUID]bool{},
		statsRows:   map[uuid.UUID]bool{},
		categories:  map[int]*Category{1: {ID: 1, Name: "Programming", Slug: "programming", IsActive: true}},
		nextCatID:   1,
	}
}

func (f *fakeRepo) enroll(userID, courseID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrollments[[2]uuid.UUID{userID, courseID}] = true
}

func (f *fakeRepo) Create(ctx context.Context, c *Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.courses[c.ID] = &cp
	f.statsRows[c.ID] = true
	return nil
}

func (f *fakeRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.courses {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) GetBySlug(ctx context.Context, slug string) (*Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.courses {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) Update(ctx context.Context, c *Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, publishedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.courses[id]
	c.Status = status
	if publishedAt != nil {
		c.PublishedAt = publishedAt
	}
	return nil
}

func (f *fakeRepo) SetCover(ctx context.Context, id uuid.UUID, coverURL, thumbnailURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.courses[id]
	c.CoverURL, c.ThumbnailURL = &coverURL, &thumbnailURL
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.courses, id)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, filter *Filter, page, limit int) ([]*Course, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*Course
	for _, c := range f.courses {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Level != nil && c.Level != *filter.Level {
			continue
		}
		price := money.Effective(c.Price, c.DiscountPrice)
		if filter.MinPrice != nil && price.LessThan(*filter.MinPrice) {
			continue
		}
		if filter.MaxPrice != nil && price.GreaterThan(*filter.MaxPrice) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(filter.Search)) {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, page, limit), len(all), nil
}

func paginate(all []*Course, page, limit int) []*Course {
	start := (page - 1) * limit
	if start >= len(all) {
		return nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func (f *fakeRepo) ListByInstructor(ctx context.Context, instructorID uuid.UUID, page, limit int) ([]*Course, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*Course
	for _, c := range f.courses {
		if c.InstructorID == instructorID {
			cp := *c
			all = append(all, &cp)
		}
	}
	return paginate(all, page, limit), len(all), nil
}

func (f *fakeRepo) CountEnrollments(ctx context.Context, courseID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for key := range f.enrollments {
		if key[1] == courseID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.lessons {
		if l.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enrollments[[2]uuid.UUID{userID, courseID}], nil
}

func (f *fakeRepo) ListCategories(ctx context.Context, includeInactive bool) ([]*Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Category
	for _, c := range f.categories {
		if c.IsActive || includeInactive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRepo) CreateCategory(ctx context.Context, cat *Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Slug == cat.Slug {
			return ErrCategoryExists
		}
	}
	f.nextCatID++
	cat.ID = f.nextCatID
	cp := *cat
	f.categories[cat.ID] = &cp
	return nil
}

func (f *fakeRepo) GetCategory(ctx context.Context, id int) (*Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) UpdateCategory(ctx context.Context, cat *Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.ID != cat.ID && c.Slug == cat.Slug {
			return ErrCategoryExists
		}
	}
	cp := *cat
	f.categories[cat.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteCategory(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.categories, id)
	return nil
}

func (f *fakeRepo) CountCoursesInCategory(ctx context.Context, id int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.courses {
		if c.CategoryID != nil && *c.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CreateSection(ctx context.Context, s *Section) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, other := range f.sections {
		if other.CourseID == s.CourseID && other.SortOrder > max {
			max = other.SortOrder
		}
	}
	s.SortOrder = max + 1
	cp := *s
	f.sections[s.ID] = &cp
	return nil
}

func (f *fakeRepo) GetSection(ctx context.Context, id uuid.UUID) (*Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sections[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) ListSections(ctx context.Context, courseID uuid.UUID) ([]*Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Section
	for _, s := range f.sections {
		if s.CourseID == courseID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeRepo) CreateLesson(ctx context.Context, l *Lesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, other := range f.lessons {
		if other.SectionID == l.SectionID && other.SortOrder > max {
			max = other.SortOrder
		}
	}
	l.SortOrder = max + 1
	cp := *l
	f.lessons[l.ID] = &cp
	f.refreshTotals(l.CourseID)
	return nil
}

// refreshTotals must be called with f.mu held.
func (f *fakeRepo) refreshTotals(courseID uuid.UUID) {
	c := f.courses[courseID]
	c.TotalLessons, c.TotalDuration = 0, 0
	for _, l := range f.lessons {
		if l.CourseID == courseID && l.IsPublished {
			c.TotalLessons++
			c.TotalDuration += l.VideoDuration
		}
	}
}

func (f *fakeRepo) UpdateLesson(ctx context.Context, l *Lesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.lessons[l.ID] = &cp
	f.refreshTotals(l.CourseID)
	return nil
}

func (f *fakeRepo) DeleteLesson(ctx context.Context, l *Lesson) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lessons, l.ID)
	f.refreshTotals(l.CourseID)
	return nil
}

func (f *fakeRepo) ReorderLessons(ctx context.Context, sectionID uuid.UUID, lessonIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, id := range lessonIDs {
		if l, ok := f.lessons[id]; ok && l.SectionID == sectionID {
			l.SortOrder = i + 1
		}
	}
	return nil
}

func (f *fakeRepo) GetLesson(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lessons[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeRepo) ListLessons(ctx context.Context, courseID uuid.UUID) ([]*Lesson, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Lesson
	for _, l := range f.lessons {
		if l.CourseID == courseID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeRepo) GetQuiz(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (f *fakeRepo) CreateQuiz(ctx context.Context, q *quiz.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.quizzes {
		if existing.LessonID == q.LessonID {
			return ErrQuizExists
		}
	}
	cp := *q
	f.quizzes[q.ID] = &cp
	return nil
}

func (f *fakeRepo) CreateQuestion(ctx context.Context, q *quiz.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, other := range f.questions {
		if other.QuizID == q.QuizID && other.SortOrder > max {
			max = other.SortOrder
		}
	}
	q.SortOrder = max + 1
	cp := *q
	f.questions = append(f.questions, &cp)
	return nil
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (m *memBlobs) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memBlobs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memBlobs) GetURL(key string) string {
	return "https://cdn.test/" + key
}
