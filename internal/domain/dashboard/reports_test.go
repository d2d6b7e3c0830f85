package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/middleware"
	"github.com/learnhub/learnhub-api/internal/pkg/jwt"
)

var reportNow = time.Date(2025, 3, 17, 15, 4, 5, 0, time.UTC)

func newReportService(repo *stubRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return reportNow }
	return svc
}

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestWindow(t *testing.T) {
	svc := newReportService(&stubRepo{})
	tests := []struct {
		name       string
		start, end *time.Time
		from, to   time.Time
		err        error
	}{
		{
			name: "defaults to twelve months",
			from: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			to:   reportNow,
		},
		{
			name:  "end date is inclusive",
			start: day("2025-01-01"),
			end:   day("2025-01-31"),
			from:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			to:    time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "end only",
			end:  day("2024-12-31"),
			from: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{name: "reversed", start: day("2025-02-01"), end: day("2025-01-01"), err: ErrInvalidRange},
		{name: "too long", start: day("2010-01-01"), end: day("2025-01-01"), err: ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := svc.window(tt.start, tt.end)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if tt.err != nil {
				return
			}
			if !from.Equal(tt.from) || !to.Equal(tt.to) {
				t.Fatalf("window [%v, %v), want [%v, %v)", from, to, tt.from, tt.to)
			}
		})
	}
}

func TestInstructorEarningsFillsMonths(t *testing.T) {
	instructorID := uuid.New()
	repo := &stubRepo{
		byMonth: []MonthPoint{
			{Month: "2025-01", Revenue: decimal.RequireFromString("19.99"), Count: 1},
			{Month: "2025-03", Revenue: decimal.RequireFromString("40.02"), Count: 2},
		},
		byCourse: []*CourseRevenue{{CourseID: uuid.New(), Title: "Go", Revenue: decimal.RequireFromString("60.01"), Sales: 3}},
	}
	out, err := newReportService(repo).InstructorEarnings(context.Background(), instructorID, day("2025-01-01"), day("2025-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	if repo.ownerSeen == nil || *repo.ownerSeen != instructorID || repo.limitSeen != 0 {
		t.Fatalf("report not scoped to the instructor: %v limit %d", repo.ownerSeen, repo.limitSeen)
	}
	if !out.TotalEarnings.Equal(decimal.RequireFromString("60.01")) || out.TotalSales != 3 {
		t.Fatalf("totals %s / %d", out.TotalEarnings, out.TotalSales)
	}
	if len(out.EarningsByMonth) != 3 {
		t.Fatalf("expected three months, got %+v", out.EarningsByMonth)
	}
	feb := out.EarningsByMonth[1]
	if feb.Month != "2025-02" || !feb.Revenue.IsZero() || feb.Count != 0 {
		t.Fatalf("expected an empty February, got %+v", feb)
	}
	if len(out.EarningsByCourse) != 1 {
		t.Fatalf("unexpected course breakdown %+v", out.EarningsByCourse)
	}
}

func TestRevenueReportIsPlatformWide(t *testing.T) {
	repo := &stubRepo{byMonth: []MonthPoint{{Month: "2025-03", Revenue: decimal.NewFromInt(10), Count: 1}}}
	out, err := newReportService(repo).RevenueReport(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if repo.ownerSeen != nil || repo.limitSeen != topCoursesLimit {
		t.Fatalf("expected unscoped top %d, got %v/%d", topCoursesLimit, repo.ownerSeen, repo.limitSeen)
	}
	if len(out.RevenueByMonth) != 12 || out.RevenueByMonth[11].Month != "2025-03" || out.TotalTransactions != 1 {
		t.Fatalf("unexpected series %+v", out.RevenueByMonth)
	}
	if out.TopCourses == nil {
		t.Fatal("expected an empty non-nil top list")
	}
}

func TestUsersReport(t *testing.T) {
	repo := &stubRepo{
		roles:   map[string]int{"STUDENT": 5},
		signups: []MonthCount{{Month: "2024-04", Count: 2}, {Month: "2025-03", Count: 3}},
	}
	out, err := newReportService(repo).UsersReport(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.UserGrowth) != 12 || out.UserGrowth[0].Count != 2 || out.UserGrowth[11].Count != 3 || out.UserGrowth[5].Count != 0 {
		t.Fatalf("unexpected growth %+v", out.UserGrowth)
	}
	if out.UsersByRole["STUDENT"] != 5 {
		t.Fatalf("unexpected roles %+v", out.UsersByRole)
	}
}

func TestCourseStudentsOwnership(t *testing.T) {
	owner, courseID := uuid.New(), uuid.New()
	repo := &stubRepo{
		owners:   map[uuid.UUID]uuid.UUID{courseID: owner},
		students: []*Student{{UserID: uuid.New()}, {UserID: uuid.New()}, {UserID: uuid.New()}},
	}
	svc := newReportService(repo)
	ctx := context.Background()

	page, total, err := svc.CourseStudents(ctx, owner, false, courseID, 2, 2)
	if err != nil || total != 3 || len(page) != 1 {
		t.Fatalf("owner page 2: %d of %d (%v)", len(page), total, err)
	}
	if _, _, err := svc.CourseStudents(ctx, uuid.New(), false, courseID, 1, 10); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, _, err := svc.CourseStudents(ctx, uuid.New(), true, courseID, 1, 10); err != nil {
		t.Fatalf("admin should see any roster: %v", err)
	}
	if _, _, err := svc.CourseStudents(ctx, owner, false, uuid.New(), 1, 10); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestReportRoutes(t *testing.T) {
	jwtSvc := jwt.NewService("dashboard-secret", time.Hour)
	router := chi.NewRouter()
	router.Mount("/dashboard", Routes(NewHandler(newReportService(&stubRepo{})), middleware.Auth(jwtSvc)))

	get := func(role, path string) int {
		tok, err := jwtSvc.GenerateAccessToken(uuid.New(), role)
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	cases := []struct {
		role, path string
		want       int
	}{
		{middleware.RoleAdmin, "/dashboard/admin/reports/revenue?startDate=2025-01-01&endDate=2025-02-28", http.StatusOK},
		{middleware.RoleAdmin, "/dashboard/admin/reports/users", http.StatusOK},
		{middleware.RoleInstructor, "/dashboard/admin/reports/revenue", http.StatusForbidden},
		{middleware.RoleAdmin, "/dashboard/admin/reports/revenue?startDate=01/02/2025", http.StatusBadRequest},
		{middleware.RoleAdmin, "/dashboard/admin/reports/revenue?startDate=2025-03-01&endDate=2025-01-01", http.StatusBadRequest},
		{middleware.RoleInstructor, "/dashboard/instructor/earnings", http.StatusOK},
		{middleware.RoleStudent, "/dashboard/instructor/earnings", http.StatusForbidden},
		{middleware.RoleInstructor, "/dashboard/instructor/courses/" + uuid.NewString() + "/students", http.StatusNotFound},
		{middleware.RoleInstructor, "/dashboard/instructor/courses/nope/students", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if got := get(tc.role, tc.path); got != tc.want {
			t.Errorf("%s %s: got %d, want %d", tc.role, tc.path, got, tc.want)
		}
	}
}
