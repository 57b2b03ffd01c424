package medication

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const cols = `medication_id, name, formula, producer, dosage, base_unit, restriction_level, stability_hours`

func scan(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(
		&m.MedicationID,
		&m.Name,
		&m.Formula,
		&m.Producer,
		&m.Dosage,
		&m.BaseUnit,
		&m.RestrictionLevel,
		&m.StabilityHours,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, m Medication) (*Medication, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO medications (`+cols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+cols+`
	`, m.MedicationID, m.Name, m.Formula, m.Producer, m.Dosage, m.BaseUnit, m.RestrictionLevel, m.StabilityHours)
	return scan(row)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Medication, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+cols+` FROM medications WHERE medication_id = $1`, id)
	m, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// GetByName — точное совпадение без учёта регистра (для чек-листа).
func (r *Repo) GetByName(ctx context.Context, name string) (*Medication, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+cols+` FROM medications WHERE lower(name) = $1
	`, strings.ToLower(name))
	m, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *Repo) List(ctx context.Context) ([]Medication, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cols+` FROM medications ORDER BY medication_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Medication
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
