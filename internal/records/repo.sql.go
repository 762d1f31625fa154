package records

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dentalog/dentalog/internal/shared"
)

const recordColumns = `id, name, surname, mobile, visit_date::text, money,
keramika, tsirkoni, balka, plastmassi, shabloni, cisferi_plastmassi,
custom_materials, notes, created_at`

// ListByOwner returns the owner's full record set, newest visit first. The
// filtering pipeline runs in process over this snapshot.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+`
FROM clinic_records
WHERE owner_id = $1
ORDER BY visit_date DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Get fetches a single record owned by the user.
func (r *Repository) Get(ctx context.Context, ownerID int64, id string) (*Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+`
FROM clinic_records
WHERE owner_id = $1 AND id = $2`, ownerID, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Create inserts a new record and returns the persisted row.
func (r *Repository) Create(ctx context.Context, ownerID int64, rec Record) (*Record, error) {
	materials, err := marshalCustomMaterials(rec.CustomMaterials)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	row := r.pool.QueryRow(ctx, `INSERT INTO clinic_records
(id, owner_id, name, surname, mobile, visit_date, money,
 keramika, tsirkoni, balka, plastmassi, shabloni, cisferi_plastmassi,
 custom_materials, notes, created_at)
VALUES ($1,$2,$3,$4,$5,$6::date,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW())
RETURNING `+recordColumns,
		id, ownerID, rec.Name, rec.Surname, rec.Mobile, rec.Date, rec.Money,
		rec.Keramika, rec.Tsirkoni, rec.Balka, rec.Plastmassi, rec.Shabloni, rec.CisferiPlastmassi,
		materials, nullText(rec.Notes))
	created, err := scanRecord(row)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update rewrites every mutable field of an existing record.
func (r *Repository) Update(ctx context.Context, ownerID int64, rec Record) (*Record, error) {
	materials, err := marshalCustomMaterials(rec.CustomMaterials)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `UPDATE clinic_records SET
name=$3, surname=$4, mobile=$5, visit_date=$6::date, money=$7,
keramika=$8, tsirkoni=$9, balka=$10, plastmassi=$11, shabloni=$12, cisferi_plastmassi=$13,
custom_materials=$14, notes=$15
WHERE owner_id=$1 AND id=$2
RETURNING `+recordColumns,
		ownerID, rec.ID, rec.Name, rec.Surname, rec.Mobile, rec.Date, rec.Money,
		rec.Keramika, rec.Tsirkoni, rec.Balka, rec.Plastmassi, rec.Shabloni, rec.CisferiPlastmassi,
		materials, nullText(rec.Notes))
	updated, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// Delete removes the record. Deleting an absent record reports not found.
func (r *Repository) Delete(ctx context.Context, ownerID int64, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clinic_records WHERE owner_id=$1 AND id=$2`, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec       Record
		materials []byte
		notes     *string
	)
	if err := row.Scan(
		&rec.ID, &rec.Name, &rec.Surname, &rec.Mobile, &rec.Date, &rec.Money,
		&rec.Keramika, &rec.Tsirkoni, &rec.Balka, &rec.Plastmassi, &rec.Shabloni, &rec.CisferiPlastmassi,
		&materials, &notes, &rec.CreatedAt,
	); err != nil {
		return Record{}, err
	}
	if notes != nil {
		rec.Notes = *notes
	}
	if len(materials) > 0 {
		if err := json.Unmarshal(materials, &rec.CustomMaterials); err != nil {
			return Record{}, err
		}
	}
	if rec.CustomMaterials == nil {
		rec.CustomMaterials = []CustomMaterial{}
	}
	return rec, nil
}

func marshalCustomMaterials(items []CustomMaterial) ([]byte, error) {
	if items == nil {
		items = []CustomMaterial{}
	}
	return json.Marshal(items)
}

func nullText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
