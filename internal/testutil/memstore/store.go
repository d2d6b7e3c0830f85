// Package memstore is an in-memory implementation of the domain repositories
// used by service tests. InTx snapshots the whole store and restores it when
// the callback fails, so tests can observe rollback behaviour.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/enrollment"
	"github.com/learnhub/learnhub-api/internal/domain/payment"
	"github.com/learnhub/learnhub-api/internal/domain/quiz"
	"github.com/learnhub/learnhub-api/internal/domain/statistics"
	"github.com/learnhub/learnhub-api/internal/domain/wallet"
)

// Course is a seeded catalog entry
type Course struct {
	ID            uuid.UUID
	Title         string
	Slug          string
	Status        string
	Price         decimal.Decimal
	DiscountPrice decimal.NullDecimal
}

// Lesson is a seeded lesson
type Lesson struct {
	ID          uuid.UUID
	CourseID    uuid.UUID
	IsPublished bool
}

type progressKey struct {
	enrollmentID uuid.UUID
	lessonID     uuid.UUID
}

type state struct {
	users        map[uuid.UUID]decimal.Decimal
	courses      map[uuid.UUID]Course
	lessons      map[uuid.UUID]Lesson
	payments     map[uuid.UUID]payment.Payment
	transactions []wallet.Transaction
	enrollments  map[uuid.UUID]enrollment.Enrollment
	progress     map[progressKey]enrollment.LessonProgress
	quizzes      map[uuid.UUID]quiz.Quiz
	attempts     []quiz.Attempt
	redemptions  map[string]wallet.Redemption
	stats        map[uuid.UUID]statistics.CourseStatistics
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Stored values are never mutated in place, so copying the containers is a full snapshot.
func (st state) clone() state {
	return state{
		users:        cloneMap(st.users),
		courses:      cloneMap(st.courses),
		lessons:      cloneMap(st.lessons),
		payments:     cloneMap(st.payments),
		transactions: append([]wallet.Transaction(nil), st.transactions...),
		enrollments:  cloneMap(st.enrollments),
		progress:     cloneMap(st.progress),
		quizzes:      cloneMap(st.quizzes),
		attempts:     append([]quiz.Attempt(nil), st.attempts...),
		redemptions:  cloneMap(st.redemptions),
		stats:        cloneMap(st.stats),
	}
}

// Store holds all tables. Every operation, and every InTx as a whole, runs under one mutex.
type Store struct {
	mu     sync.Mutex
	st     state
	faults map[string]error
}

// New creates an empty store
func New() *Store {
	return &Store{
		st: state{
			users:       map[uuid.UUID]decimal.Decimal{},
			courses:     map[uuid.UUID]Course{},
			lessons:     map[uuid.UUID]Lesson{},
			payments:    map[uuid.UUID]payment.Payment{},
			enrollments: map[uuid.UUID]enrollment.Enrollment{},
			progress:    map[progressKey]enrollment.LessonProgress{},
			quizzes:     map[uuid.UUID]quiz.Quiz{},
			redemptions: map[string]wallet.Redemption{},
			stats:       map[uuid.UUID]statistics.CourseStatistics{},
		},
		faults: map[string]error{},
	}
}

// FailOn makes the named repository operation return err until ClearFaults.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// ClearFaults removes every injected failure
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]error{}
}

func (s *Store) fault(op string) error {
	return s.faults[op]
}

// conn is a handle that is either autocommit or bound to the running InTx.
type conn struct {
	s    *Store
	inTx bool
}

func (c conn) lock() func() {
	if c.inTx {
		return func() {}
	}
	c.s.mu.Lock()
	return c.s.mu.Unlock
}

func (c conn) tx(fn func(c conn) error) error {
	if c.inTx {
		return fn(c)
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	snapshot := c.s.st.clone()
	if err := fn(conn{s: c.s, inTx: true}); err != nil {
		c.s.st = snapshot
		return err
	}
	return nil
}

// Seeding and inspection helpers.

// AddUser creates a user with the given balance
func (s *Store) AddUser(balance decimal.Decimal) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.st.users[id] = balance
	return id
}

// AddCourse stores c, defaulting ID and a PUBLISHED status
func (s *Store) AddCourse(c Course) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = "PUBLISHED"
	}
	if c.Title == "" {
		c.Title = "Course " + c.ID.String()[:8]
	}
	if c.Slug == "" {
		c.Slug = c.ID.String()
	}
	s.st.courses[c.ID] = c
	return c.ID
}

// AddLesson adds a lesson to a course
func (s *Store) AddLesson(courseID uuid.UUID, published bool) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.st.lessons[id] = Lesson{ID: id, CourseID: courseID, IsPublished: published}
	return id
}

// SetLessonPublished toggles a lesson's published flag
func (s *Store) SetLessonPublished(lessonID uuid.UUID, published bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.st.lessons[lessonID]
	l.IsPublished = published
	s.st.lessons[lessonID] = l
}

// AddQuiz attaches a quiz with questions to a lesson
func (s *Store) AddQuiz(lessonID uuid.UUID, passingScore int, maxAttempts *int, questions ...*quiz.Question) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := quiz.Quiz{
		ID:           uuid.New(),
		LessonID:     lessonID,
		PassingScore: passingScore,
		MaxAttempts:  maxAttempts,
		CreatedAt:    time.Now(),
	}
	for i, question := range questions {
		cp := *question
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		cp.QuizID = q.ID
		if cp.SortOrder == 0 {
			cp.SortOrder = i + 1
		}
		q.Questions = append(q.Questions, &cp)
	}
	s.st.quizzes[q.ID] = q
	return q.ID
}

// AddPayment stores a payment row directly
func (s *Store) AddPayment(p payment.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.payments[p.ID] = p
}

// Balance returns a user's stored balance
func (s *Store) Balance(userID uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.users[userID]
}

// Transactions returns a user's ledger rows in insertion order
func (s *Store) Transactions(userID uuid.UUID) []wallet.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []wallet.Transaction
	for _, t := range s.st.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

// Payments returns a user's payment rows
func (s *Store) Payments(userID uuid.UUID) []payment.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []payment.Payment
	for _, p := range s.st.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

// EnrollmentsFor counts enrollment rows for a (user, course) pair
func (s *Store) EnrollmentsFor(userID, courseID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.st.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			n++
		}
	}
	return n
}

// Redemption returns the stored voucher redemption, if any
func (s *Store) Redemption(code string) (wallet.Redemption, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.st.redemptions[code]
	return r, ok
}

// StoredStatistics returns the stored statistics row, if any
func (s *Store) StoredStatistics(courseID uuid.UUID) (statistics.CourseStatistics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.st.stats[courseID]
	return st, ok
}
