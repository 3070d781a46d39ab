package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"pet-adoption/internal/domain/applications"
	"pet-adoption/internal/ports/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockPetQuery = "SELECT (.+) FROM pets WHERE id = \\$1 FOR UPDATE"

func petRow(id, status string) []driver.Value {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, "Milo", "Dog", "Beagle", 3, "Male", "Medium", "brown",
		"Friendly", "", true, false,
		`[]`, status, 50.0, "Springfield", "admin-1",
		now, now,
	}
}

func newWorkflow(t *testing.T) (*applications.Workflow, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	wf := applications.NewWorkflow(NewApplicationsRepo(db), NewPetsRepo(db), applications.Deps{
		Tx: NewTransactor(db),
	})
	return wf, mock
}

func actorUser(id string) auth.Actor  { return auth.Actor{ID: id, Role: auth.RoleUser} }
func actorAdmin(id string) auth.Actor { return auth.Actor{ID: id, Role: auth.RoleAdmin} }

func submissionInfo() applications.ApplicantInfo {
	return applications.ApplicantInfo{
		Phone:       "555-0100",
		Address:     "742 Evergreen",
		HousingType: applications.HousingHouse,
		Experience:  "dogs",
		Reason:      "company",
	}
}

func TestPetsRepo_GetByIDForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(lockPetQuery).
		WithArgs("pet-1").
		WillReturnRows(sqlmock.NewRows(petCols).AddRow(petRow("pet-1", "Pending")...))

	p, err := NewPetsRepo(db).GetByIDForUpdate(context.Background(), "pet-1")
	require.NoError(t, err)
	assert.Equal(t, "pet-1", p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflow_SubmitLocksPetInsideTx(t *testing.T) {
	wf, mock := newWorkflow(t)
	user := actorUser("user-1")

	mock.ExpectBegin()
	mock.ExpectQuery(lockPetQuery).
		WithArgs("pet-1").
		WillReturnRows(sqlmock.NewRows(petCols).AddRow(petRow("pet-1", "Available")...))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("pet-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE pets SET status").
		WithArgs("pet-1", "Pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := wf.Submit(context.Background(), user, "pet-1", submissionInfo())
	require.NoError(t, err)
	assert.Equal(t, applications.StatusPending, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflow_SubmitSeesAdoptedAfterLock(t *testing.T) {
	wf, mock := newWorkflow(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockPetQuery).
		WithArgs("pet-1").
		WillReturnRows(sqlmock.NewRows(petCols).AddRow(petRow("pet-1", "Adopted")...))
	mock.ExpectRollback()

	_, err := wf.Submit(context.Background(), actorUser("user-1"), "pet-1", submissionInfo())
	assert.ErrorIs(t, err, applications.ErrPetNotAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflow_ReviewLocksPetBeforeTransition(t *testing.T) {
	wf, mock := newWorkflow(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM applications").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(applicationCols).AddRow(applicationRow("app-1", "Pending", nil)...))
	mock.ExpectQuery(lockPetQuery).
		WithArgs("pet-1").
		WillReturnRows(sqlmock.NewRows(petCols).AddRow(petRow("pet-1", "Pending")...))
	// Un hermano aprobado antes de tomar el lock ya rechazó esta solicitud.
	mock.ExpectQuery("UPDATE applications").
		WillReturnRows(sqlmock.NewRows(applicationCols))
	mock.ExpectQuery("SELECT (.+) FROM applications").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(applicationCols).AddRow(applicationRow("app-1", "Rejected", time.Now())...))
	mock.ExpectRollback()

	_, err := wf.Review(context.Background(), actorAdmin("admin-1"), "app-1", applications.StatusApproved, "")
	assert.ErrorIs(t, err, applications.ErrAlreadyReviewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflow_DeleteLocksPetBeforeDelete(t *testing.T) {
	wf, mock := newWorkflow(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM applications").
		WithArgs("app-1").
		WillReturnRows(sqlmock.NewRows(applicationCols).AddRow(applicationRow("app-1", "Pending", nil)...))
	mock.ExpectQuery(lockPetQuery).
		WithArgs("pet-1").
		WillReturnRows(sqlmock.NewRows(petCols).AddRow(petRow("pet-1", "Pending")...))
	mock.ExpectExec("DELETE FROM applications").
		WithArgs("app-1", "Pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, wf.Delete(context.Background(), actorUser("user-1"), "app-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
