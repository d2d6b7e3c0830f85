package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestPqErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert enrollment: %w", &pq.Error{Code: "23505", Constraint: "enrollments_user_id_course_id_key"})
	fk := &pq.Error{Code: "23503"}

	if !IsUniqueViolation(dup) || IsForeignKeyViolation(dup) {
		t.Fatal("expected wrapped 23505 to be a unique violation only")
	}
	if ConstraintName(dup) != "enrollments_user_id_course_id_key" {
		t.Fatalf("unexpected constraint %q", ConstraintName(dup))
	}
	if !IsForeignKeyViolation(fk) {
		t.Fatal("expected 23503 to be a foreign key violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatal("plain errors are not violations")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("get user: %w", sql.ErrNoRows)) {
		t.Fatal("expected wrapped ErrNoRows to be not found")
	}
}
