package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/enrollment"
	"github.com/learnhub/learnhub-api/internal/domain/payment"
	"github.com/learnhub/learnhub-api/internal/domain/statistics"
)

type statsRepo struct{ conn }

// StatisticsRepo returns the store as a statistics.Repository.
// Reviews are not modelled, so review counters stay zero.
func (s *Store) StatisticsRepo() statistics.Repository {
	return statsRepo{conn{s: s}}
}

func (r statsRepo) Aggregate(ctx context.Context, courseID uuid.UUID) (*statistics.CourseStatistics, error) {
	defer r.lock()()
	out := &statistics.CourseStatistics{
		CourseID:      courseID,
		AverageRating: decimal.Zero,
		TotalRevenue:  decimal.Zero,
	}
	for _, e := range r.s.st.enrollments {
		if e.CourseID == courseID && (e.Status == enrollment.StatusActive || e.Status == enrollment.StatusCompleted) {
			out.TotalEnrollments++
		}
	}
	for _, p := range r.s.st.payments {
		if p.CourseID == courseID && p.Status == payment.StatusCompleted {
			out.TotalRevenue = out.TotalRevenue.Add(p.Amount)
		}
	}
	return out, nil
}

func (r statsRepo) Upsert(ctx context.Context, st *statistics.CourseStatistics) error {
	defer r.lock()()
	if err := r.s.fault("UpsertStatistics"); err != nil {
		return err
	}
	r.s.st.stats[st.CourseID] = *st
	return nil
}

func (r statsRepo) Get(ctx context.Context, courseID uuid.UUID) (*statistics.CourseStatistics, error) {
	defer r.lock()()
	st, ok := r.s.st.stats[courseID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}
