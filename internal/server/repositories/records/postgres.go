package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/memoriesapp/memories/internal/common"
	"github.com/memoriesapp/memories/internal/dbx"
	"github.com/memoriesapp/memories/internal/memory"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) QueryToday(ctx context.Context, owner, monthDay string) ([]memory.Record, error) {

	query :=
		`SELECT owner, moment, year, description, image, star, favourite, latitude, longitude, schema_version
		 FROM memory_records
		 WHERE owner = $1 AND substr(moment, 5, 4) = $2
		 `

	rows, err := r.db.QueryContext(ctx, query, owner, monthDay)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []memory.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rec memory.Record) error {

	query :=
		`INSERT INTO memory_records
		   (owner, moment, year, description, image, star, favourite, latitude, longitude, schema_version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	lat, lon := coordinateColumns(rec.Coordinates)
	_, err := r.db.ExecContext(ctx, query,
		rec.Owner, rec.Moment, rec.Year,
		rec.Description, rec.Image, rec.Star, rec.Favourite,
		lat, lon, rec.SchemaVersion)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec memory.Record) error {

	query :=
		`UPDATE memory_records
		 SET year = $3, description = $4, image = $5, star = $6, favourite = $7,
		     latitude = $8, longitude = $9, schema_version = $10, updated_at = now()
		 WHERE owner = $1 AND moment = $2
		 `

	lat, lon := coordinateColumns(rec.Coordinates)
	res, err := r.db.ExecContext(ctx, query,
		rec.Owner, rec.Moment, rec.Year,
		rec.Description, rec.Image, rec.Star, rec.Favourite,
		lat, lon, rec.SchemaVersion)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// scanner abstracts *sql.Rows / *sql.Row for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (memory.Record, error) {
	var rec memory.Record
	var lat, lon sql.NullFloat64

	err := s.Scan(&rec.Owner, &rec.Moment, &rec.Year,
		&rec.Description, &rec.Image, &rec.Star, &rec.Favourite,
		&lat, &lon, &rec.SchemaVersion)
	if err != nil {
		return memory.Record{}, err
	}

	if lat.Valid && lon.Valid {
		rec.Coordinates = &memory.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	return rec, nil
}

func coordinateColumns(c *memory.Coordinates) (lat, lon sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Latitude, Valid: true},
		sql.NullFloat64{Float64: c.Longitude, Valid: true}
}
