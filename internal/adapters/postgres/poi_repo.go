package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mabteam/poimap/internal/core/domain"
)

const poiColumns = `id, name, category, lat, lng, image_url, created_at`

const upsertPOI = `
	INSERT INTO pois (id, name, category, lat, lng, image_url)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name, category = EXCLUDED.category,
	    lat = EXCLUDED.lat, lng = EXCLUDED.lng, image_url = EXCLUDED.image_url
`

// POIRepo implements ports.POIStore with pgx.
type POIRepo struct {
	db *DB
}

// NewPOIRepo creates a new POIRepo.
func NewPOIRepo(db *DB) *POIRepo {
	return &POIRepo{db: db}
}

// FetchPOIs returns every POI inside region, boundary inclusive.
func (r *POIRepo) FetchPOIs(ctx context.Context, region domain.Region) ([]domain.POI, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+poiColumns+`
		FROM pois
		WHERE lat BETWEEN $1 AND $3 AND lng BETWEEN $2 AND $4
		ORDER BY id
	`, region.SouthWest.Lat, region.SouthWest.Lng, region.NorthEast.Lat, region.NorthEast.Lng)
	if err != nil {
		return nil, err
	}
	return collectPOIs(rows)
}

// AddPOI inserts or replaces a single POI.
func (r *POIRepo) AddPOI(ctx context.Context, p *domain.POI) error {
	_, err := r.db.Pool.Exec(ctx, upsertPOI,
		p.ID, p.Name, p.Category, p.Coordinate.Lat, p.Coordinate.Lng, p.ImageURL)
	return err
}

// AddPOIs inserts many POIs in one transaction using pgx.Batch.
func (r *POIRepo) AddPOIs(ctx context.Context, pois []domain.POI) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range pois {
			batch.Queue(upsertPOI, p.ID, p.Name, p.Category, p.Coordinate.Lat, p.Coordinate.Lng, p.ImageURL)
		}
		br := tx.SendBatch(ctx, batch)
		for range pois {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("batch exec: %w", err)
			}
		}
		return br.Close()
	})
}

// DeletePOI removes a POI by id.
func (r *POIRepo) DeletePOI(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM pois WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("poi %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteAll removes every POI.
func (r *POIRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM pois`)
	return err
}

// GetByID returns a POI by id.
func (r *POIRepo) GetByID(ctx context.Context, id string) (*domain.POI, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+poiColumns+` FROM pois WHERE id = $1`, id)
	p, err := scanPOI(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("poi %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCategory returns POIs of one category ordered by name.
func (r *POIRepo) ListByCategory(ctx context.Context, category string, limit int) ([]domain.POI, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+poiColumns+`
		FROM pois
		WHERE category = $1
		ORDER BY name, id
		LIMIT $2
	`, category, limit)
	if err != nil {
		return nil, err
	}
	return collectPOIs(rows)
}

// Search returns POIs in region whose name contains query, ignoring case.
func (r *POIRepo) Search(ctx context.Context, region domain.Region, query string) ([]domain.POI, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+poiColumns+`
		FROM pois
		WHERE lat BETWEEN $1 AND $3 AND lng BETWEEN $2 AND $4
		  AND strpos(lower(name), lower($5)) > 0
		ORDER BY lat, lng
	`, region.SouthWest.Lat, region.SouthWest.Lng, region.NorthEast.Lat, region.NorthEast.Lng, query)
	if err != nil {
		return nil, err
	}
	return collectPOIs(rows)
}

func scanPOI(row pgx.Row) (domain.POI, error) {
	var p domain.POI
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Coordinate.Lat, &p.Coordinate.Lng, &p.ImageURL, &p.CreatedAt)
	return p, err
}

func collectPOIs(rows pgx.Rows) ([]domain.POI, error) {
	defer rows.Close()

	pois := make([]domain.POI, 0)
	for rows.Next() {
		p, err := scanPOI(rows)
		if err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}
	return pois, rows.Err()
}
