package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"pet-adoption/internal/domain/applications"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var applicationCols = []string{
	"id", "pet_id", "applicant_id", "status",
	"phone", "address", "housing_type", "has_yard", "has_pets",
	"pets_description", "experience", "reason",
	"reviewed_by", "reviewed_at", "review_notes",
	"created_at", "updated_at",
}

func applicationRow(id, status string, reviewedAt any) []driver.Value {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, "pet-1", "user-1", status,
		"555-0100", "742 Evergreen", "House", true, false,
		"", "dogs", "company",
		"", reviewedAt, "",
		now, now,
	}
}

func TestApplicationsRepo_TransitionStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewApplicationsRepo(db)
	ctx := context.Background()
	at := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	rv := applications.Review{Status: applications.StatusApproved, ReviewedBy: "admin-1", ReviewedAt: at, Notes: "ok"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("UPDATE applications").
			WithArgs("app-1", "Pending", "Approved", "admin-1", at, "ok").
			WillReturnRows(sqlmock.NewRows(applicationCols).AddRow(applicationRow("app-1", "Approved", at)...))

		a, err := repo.TransitionStatus(ctx, "app-1", applications.StatusPending, rv)
		require.NoError(t, err)
		assert.Equal(t, applications.StatusApproved, a.Status)
		assert.Equal(t, applications.HousingHouse, a.Info.HousingType)
		require.NotNil(t, a.ReviewedAt)
		assert.True(t, a.ReviewedAt.Equal(at))
	})

	t.Run("AlreadyReviewed", func(t *testing.T) {
		mock.ExpectQuery("UPDATE applications").
			WillReturnRows(sqlmock.NewRows(applicationCols))
		mock.ExpectQuery("SELECT (.+) FROM applications").
			WithArgs("app-1").
			WillReturnRows(sqlmock.NewRows(applicationCols).AddRow(applicationRow("app-1", "Rejected", at)...))

		_, err := repo.TransitionStatus(ctx, "app-1", applications.StatusPending, rv)
		assert.ErrorIs(t, err, applications.ErrAlreadyReviewed)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("UPDATE applications").
			WillReturnRows(sqlmock.NewRows(applicationCols))
		mock.ExpectQuery("SELECT (.+) FROM applications").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(applicationCols))

		_, err := repo.TransitionStatus(ctx, "missing", applications.StatusPending, rv)
		assert.ErrorIs(t, err, applications.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationsRepo_RejectPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewApplicationsRepo(db)
	at := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("UPDATE applications").
		WithArgs("pet-1", "app-1", "Pending", "Rejected", at, applications.CascadeRejectionNotes).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("app-2").AddRow("app-3"))

	ids, err := repo.RejectPending(context.Background(), "pet-1", "app-1", applications.CascadeRejectionNotes, at)
	require.NoError(t, err)
	assert.Equal(t, []string{"app-2", "app-3"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationsRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewApplicationsRepo(db)
	ctx := context.Background()

	t.Run("Pending", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM applications").
			WithArgs("app-1", "Pending").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "app-1", applications.StatusPending))
	})

	t.Run("AlreadyReviewed", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM applications").
			WithArgs("app-2", "Pending").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT (.+) FROM applications").
			WithArgs("app-2").
			WillReturnRows(sqlmock.NewRows(applicationCols).AddRow(applicationRow("app-2", "Approved", nil)...))

		err := repo.Delete(ctx, "app-2", applications.StatusPending)
		assert.ErrorIs(t, err, applications.ErrOnlyPendingDeletable)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationsRepo_CreateDuplicatePair(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "applications_pet_applicant_key"})

	now := time.Now()
	err = NewApplicationsRepo(db).Create(context.Background(), applications.Application{
		ID:          "app-1",
		PetID:       "pet-1",
		ApplicantID: "user-1",
		Status:      applications.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	assert.ErrorIs(t, err, applications.ErrDuplicateApplication)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationWhere(t *testing.T) {
	where, args := applicationWhere(applications.ListFilter{
		ApplicantID: "user-1",
		Status:      applications.StatusPending,
	})
	assert.Equal(t, " WHERE applicant_id = $1 AND status = $2", where)
	assert.Equal(t, []any{"user-1", "Pending"}, args)

	where, args = applicationWhere(applications.ListFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestTransactor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tx := NewTransactor(db)
	repo := NewApplicationsRepo(db)
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM applications").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			// Anidado: reusa la misma tx.
			return tx.WithinTx(ctx, func(ctx context.Context) error {
				return repo.Delete(ctx, "app-1", applications.StatusPending)
			})
		})
		assert.NoError(t, err)
	})

	t.Run("Rollback", func(t *testing.T) {
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tx.WithinTx(ctx, func(ctx context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
