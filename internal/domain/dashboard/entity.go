package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminOverview is the platform-wide summary shown to admins
type AdminOverview struct {
	TotalUsers        int             `json:"totalUsers"`
	UsersByRole       map[string]int  `json:"usersByRole"`
	NewUsersThisMonth int             `json:"newUsersThisMonth"`
	PublishedCourses  int             `json:"publishedCourses"`
	PendingCourses    int             `json:"pendingCourses"`
	TotalEnrollments  int             `json:"totalEnrollments"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	RevenueThisMonth  decimal.Decimal `json:"revenueThisMonth"`
}

// InstructorOverview summarizes an instructor's own courses
type InstructorOverview struct {
	TotalCourses     int             `json:"totalCourses"`
	CoursesByStatus  map[string]int  `json:"coursesByStatus"`
	TotalEnrollments int             `json:"totalEnrollments"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalReviews     int             `json:"totalReviews"`
	AverageRating    decimal.Decimal `json:"averageRating"`
}

type keyCount struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

// instructorTotals is the course_statistics rollup for one instructor
type instructorTotals struct {
	Enrollments  int             `db:"enrollments"`
	Revenue      decimal.Decimal `db:"revenue"`
	Reviews      int             `db:"reviews"`
	RatingPoints decimal.Decimal `db:"rating_points"`
}

// MonthPoint is one bucket of a monthly series; Month is formatted YYYY-MM (UTC)
type MonthPoint struct {
	Month   string          `db:"month" json:"month"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
	Count   int             `db:"count" json:"count"`
}

// MonthCount is one bucket of a monthly counter series
type MonthCount struct {
	Month string `db:"month" json:"month"`
	Count int    `db:"count" json:"count"`
}

// CourseRevenue is the revenue one course earned within a report window
type CourseRevenue struct {
	CourseID uuid.UUID       `db:"course_id" json:"courseId"`
	Title    string          `db:"title" json:"title"`
	Revenue  decimal.Decimal `db:"revenue" json:"revenue"`
	Sales    int             `db:"sales" json:"sales"`
}

// Student is one enrollment row in the instructor's course roster
type Student struct {
	UserID           uuid.UUID       `db:"user_id" json:"userId"`
	FirstName        string          `db:"first_name" json:"firstName"`
	LastName         string          `db:"last_name" json:"lastName"`
	Email            string          `db:"email" json:"email"`
	EnrollmentID     uuid.UUID       `db:"enrollment_id" json:"enrollmentId"`
	Status           string          `db:"status" json:"status"`
	ProgressPercent  decimal.Decimal `db:"progress_percent" json:"progressPercent"`
	CompletedLessons int             `db:"completed_lessons" json:"completedLessons"`
	EnrolledAt       time.Time       `db:"enrolled_at" json:"enrolledAt"`
	CompletedAt      *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
}

// Earnings is the instructor sales report for a date window
type Earnings struct {
	From             time.Time        `json:"from"`
	To               time.Time        `json:"to"`
	TotalEarnings    decimal.Decimal  `json:"totalEarnings"`
	TotalSales       int              `json:"totalSales"`
	EarningsByMonth  []MonthPoint     `json:"earningsByMonth"`
	EarningsByCourse []*CourseRevenue `json:"earningsByCourse"`
}

// RevenueReport is the platform sales report for a date window
type RevenueReport struct {
	From              time.Time        `json:"from"`
	To                time.Time        `json:"to"`
	TotalRevenue      decimal.Decimal  `json:"totalRevenue"`
	TotalTransactions int              `json:"totalTransactions"`
	RevenueByMonth    []MonthPoint     `json:"revenueByMonth"`
	TopCourses        []*CourseRevenue `json:"topCourses"`
}

// UsersReport breaks accounts down by role and by signup month
type UsersReport struct {
	UsersByRole map[string]int `json:"usersByRole"`
	UserGrowth  []MonthCount   `json:"userGrowth"`
}
