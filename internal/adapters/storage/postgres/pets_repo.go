package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, name, species, breed, age, gender, size, color,
	description, medical_history, vaccinated, neutered,
	photos, status, adoption_fee, location, added_by,
	created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	photos, err := encodePhotos(p.Photos)
	if err != nil {
		return err
	}

	_, err = conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`,
		p.ID,
		p.Name,
		string(p.Species),
		p.Breed,
		p.Age,
		string(p.Gender),
		string(p.Size),
		p.Color,
		p.Description,
		p.MedicalHistory,
		p.Vaccinated,
		p.Neutered,
		photos,
		string(p.Status),
		p.AdoptionFee,
		p.Location,
		p.AddedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapUniqueViolation(err, nil)
}

// Update reescribe el documento completo salvo photos, que solo crece por AppendPhotos.
func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			age = $5,
			gender = $6,
			size = $7,
			color = $8,
			description = $9,
			medical_history = $10,
			vaccinated = $11,
			neutered = $12,
			status = $13,
			adoption_fee = $14,
			location = $15,
			updated_at = $16
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		string(p.Species),
		p.Breed,
		p.Age,
		string(p.Gender),
		string(p.Size),
		p.Color,
		p.Description,
		p.MedicalHistory,
		p.Vaccinated,
		p.Neutered,
		string(p.Status),
		p.AdoptionFee,
		p.Location,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return expectOne(res, pets.ErrNotFound)
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return r.getOne(ctx, id, "")
}

// GetByIDForUpdate toma el lock de la fila hasta el fin de la tx del contexto.
// Sin tx abierta se comporta como GetByID.
func (r *PetsRepo) GetByIDForUpdate(ctx context.Context, id string) (pets.Pet, error) {
	return r.getOne(ctx, id, " FOR UPDATE")
}

func (r *PetsRepo) getOne(ctx context.Context, id, lock string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id = $1`+lock, id)

	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res, pets.ErrNotFound)
}

func (r *PetsRepo) UpdateStatus(ctx context.Context, id string, status pets.Status, at time.Time) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE pets SET status = $2, updated_at = $3 WHERE id = $1
	`, id, string(status), at)
	if err != nil {
		return err
	}
	return expectOne(res, pets.ErrNotFound)
}

func (r *PetsRepo) AppendPhotos(ctx context.Context, id string, urls []string, at time.Time) (pets.Pet, error) {
	add, err := encodePhotos(urls)
	if err != nil {
		return pets.Pet{}, err
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `
		UPDATE pets
		SET photos = photos || $2::jsonb, updated_at = $3
		WHERE id = $1
		RETURNING `+petColumns,
		id, add, at,
	)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	where, args := petWhere(f)

	q := `SELECT ` + petColumns + ` FROM pets` + where + ` ORDER BY created_at DESC, id`
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

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PetsRepo) Count(ctx context.Context, f pets.ListFilter) (int, error) {
	where, args := petWhere(f)

	var n int
	err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM pets`+where, args...).Scan(&n)
	return n, err
}

func (r *PetsRepo) Distinct(ctx context.Context, field pets.Field) ([]string, error) {
	col, err := petColumn(field)
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT DISTINCT `+col+` FROM pets WHERE `+col+` <> '' ORDER BY `+col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PetsRepo) CountBy(ctx context.Context, field pets.Field) (map[string]int, error) {
	col, err := petColumn(field)
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+col+`, COUNT(*) FROM pets GROUP BY `+col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, rows.Err()
}

// petWhere traduce ListFilter a SQL con la misma semántica que ListFilter.Matches.
func petWhere(f pets.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := arg(likePattern(f.Search))
		conds = append(conds, "(name ILIKE "+p+" OR breed ILIKE "+p+")")
	}
	if f.Species != "" {
		conds = append(conds, "species = "+arg(string(f.Species)))
	}
	if f.Breed != "" {
		conds = append(conds, "breed ILIKE "+arg(likePattern(f.Breed)))
	}
	if f.Gender != "" {
		conds = append(conds, "gender = "+arg(string(f.Gender)))
	}
	if f.Size != "" {
		conds = append(conds, "size = "+arg(string(f.Size)))
	}
	if f.MinAge != nil {
		conds = append(conds, "age >= "+arg(*f.MinAge))
	}
	if f.MaxAge != nil {
		conds = append(conds, "age <= "+arg(*f.MaxAge))
	}
	if len(f.Statuses) > 0 {
		ph := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			ph = append(ph, arg(string(s)))
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ",")+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func petColumn(field pets.Field) (string, error) {
	switch field {
	case pets.FieldSpecies:
		return "species", nil
	case pets.FieldBreed:
		return "breed", nil
	case pets.FieldLocation:
		return "location", nil
	case pets.FieldStatus:
		return "status", nil
	default:
		return "", fmt.Errorf("unsupported field: %s", field)
	}
}

// likePattern arma un substring match escapando los comodines de LIKE.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var (
		p                              pets.Pet
		species, gender, size, status string
		photos                         []byte
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&species,
		&p.Breed,
		&p.Age,
		&gender,
		&size,
		&p.Color,
		&p.Description,
		&p.MedicalHistory,
		&p.Vaccinated,
		&p.Neutered,
		&photos,
		&status,
		&p.AdoptionFee,
		&p.Location,
		&p.AddedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Species = pets.Species(species)
	p.Gender = pets.Gender(gender)
	p.Size = pets.Size(size)
	p.Status = pets.Status(status)

	p.Photos = []string{}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &p.Photos); err != nil {
			return pets.Pet{}, fmt.Errorf("decode photos: %w", err)
		}
	}
	return p, nil
}

func encodePhotos(photos []string) (string, error) {
	if photos == nil {
		photos = []string{}
	}
	b, err := json.Marshal(photos)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
