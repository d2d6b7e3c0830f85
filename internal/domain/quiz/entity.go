package quiz

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuestionType is the kind of choice a question offers
type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "SINGLE_CHOICE"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
)

// Quiz belongs to exactly one lesson
type Quiz struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	LessonID     uuid.UUID   `db:"lesson_id" json:"lessonId"`
	CourseID     uuid.UUID   `db:"course_id" json:"courseId"`
	PassingScore int         `db:"passing_score" json:"passingScore"`
	TimeLimit    *int        `db:"time_limit" json:"timeLimit,omitempty"`
	MaxAttempts  *int        `db:"max_attempts" json:"maxAttempts,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	Questions    []*Question `db:"-" json:"questions"`
}

// Question is one gradable item; CorrectAnswers holds option indexes
type Question struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	QuizID         uuid.UUID    `db:"quiz_id" json:"quizId"`
	Question       string       `db:"question" json:"question"`
	QuestionType   QuestionType `db:"question_type" json:"questionType"`
	Options        StringList   `db:"options" json:"options"`
	CorrectAnswers IntList      `db:"correct_answers" json:"correctAnswers"`
	Explanation    string       `db:"explanation" json:"explanation"`
	Points         int          `db:"points" json:"points"`
	SortOrder      int          `db:"sort_order" json:"sortOrder"`
}

// Attempt is an immutable scored submission
type Attempt struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.UUID       `db:"user_id" json:"userId"`
	QuizID       uuid.UUID       `db:"quiz_id" json:"quizId"`
	EnrollmentID uuid.UUID       `db:"enrollment_id" json:"enrollmentId"`
	Score        decimal.Decimal `db:"score" json:"score"`
	TotalPoints  int             `db:"total_points" json:"totalPoints"`
	EarnedPoints int             `db:"earned_points" json:"earnedPoints"`
	IsPassed     bool            `db:"is_passed" json:"isPassed"`
	Answers      Answers         `db:"answers" json:"answers"`
	SubmittedAt  time.Time       `db:"submitted_at" json:"submittedAt"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// Answers maps question id to the selected option indexes
type Answers map[string][]int

// StringList is a JSONB array of strings
type StringList []string

// IntList is a JSONB array of ints
type IntList []int

func (a Answers) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

func (a *Answers) Scan(src interface{}) error {
	return scanJSON(src, a)
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *IntList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source: %T", src)
	}
}

// SubmitResult is returned after a submission is graded
type SubmitResult struct {
	Attempt      *Attempt        `json:"attempt"`
	Score        decimal.Decimal `json:"score"`
	TotalPoints  int             `json:"totalPoints"`
	EarnedPoints int             `json:"earnedPoints"`
	IsPassed     bool            `json:"isPassed"`
	PassingScore int             `json:"passingScore"`
}

// StudentQuestion hides grading data
type StudentQuestion struct {
	ID           uuid.UUID    `json:"id"`
	Question     string       `json:"question"`
	QuestionType QuestionType `json:"questionType"`
	Options      StringList   `json:"options"`
	Points       int          `json:"points"`
	SortOrder    int          `json:"sortOrder"`
}

// StudentView is a quiz as shown to an enrolled student
type StudentView struct {
	ID           uuid.UUID          `json:"id"`
	LessonID     uuid.UUID          `json:"lessonId"`
	PassingScore int                `json:"passingScore"`
	TimeLimit    *int               `json:"timeLimit,omitempty"`
	MaxAttempts  *int               `json:"maxAttempts,omitempty"`
	AttemptsUsed int                `json:"attemptsUsed"`
	Questions    []*StudentQuestion `json:"questions"`
}
