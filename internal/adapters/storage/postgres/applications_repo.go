package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/domain/applications"
)

type ApplicationsRepo struct {
	db *sql.DB
}

func NewApplicationsRepo(db *sql.DB) *ApplicationsRepo {
	return &ApplicationsRepo{db: db}
}

const applicationColumns = `
	id, pet_id, applicant_id, status,
	phone, address, housing_type, has_yard, has_pets,
	pets_description, experience, reason,
	reviewed_by, reviewed_at, review_notes,
	created_at, updated_at`

var applicationConstraints = map[string]error{
	"applications_pet_applicant_key": applications.ErrDuplicateApplication,
}

func (r *ApplicationsRepo) Create(ctx context.Context, a applications.Application) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO applications (`+applicationColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		a.ID,
		a.PetID,
		a.ApplicantID,
		string(a.Status),
		a.Info.Phone,
		a.Info.Address,
		string(a.Info.HousingType),
		a.Info.HasYard,
		a.Info.HasPets,
		a.Info.PetsDescription,
		a.Info.Experience,
		a.Info.Reason,
		a.ReviewedBy,
		toNullTime(a.ReviewedAt),
		a.ReviewNotes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapUniqueViolation(err, applicationConstraints)
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id string) (applications.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return applications.Application{}, applications.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE id = $1
	`, id)

	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return applications.Application{}, applications.ErrNotFound
	}
	return a, err
}

func (r *ApplicationsRepo) ExistsForPair(ctx context.Context, petID, applicantID string) (bool, error) {
	var ok bool
	err := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM applications WHERE pet_id = $1 AND applicant_id = $2)
	`, petID, applicantID).Scan(&ok)
	return ok, err
}

// TransitionStatus es un UPDATE condicionado al estado actual.
func (r *ApplicationsRepo) TransitionStatus(ctx context.Context, id string, from applications.Status, rv applications.Review) (applications.Application, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `
		UPDATE applications
		SET status = $3, reviewed_by = $4, reviewed_at = $5, review_notes = $6, updated_at = $5
		WHERE id = $1 AND status = $2
		RETURNING `+applicationColumns,
		id, string(from), string(rv.Status), rv.ReviewedBy, rv.ReviewedAt, rv.Notes,
	)

	a, err := scanApplication(row)
	if !errors.Is(err, sql.ErrNoRows) {
		return a, err
	}

	// Cero filas: o no existe o ya no estaba en from.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return applications.Application{}, getErr
	}
	return applications.Application{}, applications.ErrAlreadyReviewed
}

func (r *ApplicationsRepo) RejectPending(ctx context.Context, petID, exceptID, notes string, at time.Time) ([]string, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `
		UPDATE applications
		SET status = $4, reviewed_by = '', reviewed_at = $5, review_notes = $6, updated_at = $5
		WHERE pet_id = $1 AND id <> $2 AND status = $3
		RETURNING id
	`, petID, exceptID, string(applications.StatusPending), string(applications.StatusRejected), at, notes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ApplicationsRepo) Delete(ctx context.Context, id string, from applications.Status) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		DELETE FROM applications WHERE id = $1 AND status = $2
	`, id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return getErr
	}
	return applications.ErrOnlyPendingDeletable
}

func (r *ApplicationsRepo) List(ctx context.Context, f applications.ListFilter) ([]applications.Application, error) {
	where, args := applicationWhere(f)

	q := `SELECT ` + applicationColumns + ` FROM applications` + where + ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Skip > 0 {
		args = append(args, f.Skip)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]applications.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ApplicationsRepo) Count(ctx context.Context, f applications.ListFilter) (int, error) {
	where, args := applicationWhere(f)

	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`+where, args...).Scan(&n)
	return n, err
}

func (r *ApplicationsRepo) StatusCounts(ctx context.Context) (map[applications.Status]int, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[applications.Status]int{}
	for rows.Next() {
		var (
			s string
			n int
		)
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[applications.Status(s)] = n
	}
	return out, rows.Err()
}

func applicationWhere(f applications.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.ApplicantID != "" {
		add("applicant_id = $%d", f.ApplicantID)
	}
	if f.PetID != "" {
		add("pet_id = $%d", f.PetID)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.ExcludeID != "" {
		add("id <> $%d", f.ExcludeID)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanApplication(row rowScanner) (applications.Application, error) {
	var (
		a               applications.Application
		status, housing string
		reviewedAt      sql.NullTime
	)
	if err := row.Scan(
		&a.ID,
		&a.PetID,
		&a.ApplicantID,
		&status,
		&a.Info.Phone,
		&a.Info.Address,
		&housing,
		&a.Info.HasYard,
		&a.Info.HasPets,
		&a.Info.PetsDescription,
		&a.Info.Experience,
		&a.Info.Reason,
		&a.ReviewedBy,
		&reviewedAt,
		&a.ReviewNotes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return applications.Application{}, err
	}

	a.Status = applications.Status(status)
	a.Info.HousingType = applications.HousingType(housing)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}
	return a, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
