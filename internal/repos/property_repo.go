package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"brokerage/internal/domain"
)

// PropertyRepo stores the whole listing collection; it is the sqlite
// implementation of catalog.Repository.
type PropertyRepo struct{ db *sqlx.DB }

func NewPropertyRepo(db *sqlx.DB) *PropertyRepo { return &PropertyRepo{db: db} }

type propertyRow struct {
	ID               string          `db:"id"`
	Position         int             `db:"position"`
	Title            string          `db:"title"`
	Description      string          `db:"description"`
	Type             string          `db:"type"`
	Status           string          `db:"status"`
	Price            float64         `db:"price"`
	City             string          `db:"city"`
	Neighborhood     string          `db:"neighborhood"`
	Address          string          `db:"address"`
	Area             float64         `db:"area"`
	Bedrooms         sql.NullInt64   `db:"bedrooms"`
	Bathrooms        sql.NullInt64   `db:"bathrooms"`
	Garage           sql.NullInt64   `db:"garage"`
	BuiltArea        sql.NullFloat64 `db:"built_area"`
	AmenitiesJSON    string          `db:"amenities_json"`
	ImagesJSON       string          `db:"images_json"`
	Lat              sql.NullFloat64 `db:"lat"`
	Lng              sql.NullFloat64 `db:"lng"`
	AcceptsExchange  bool            `db:"accepts_exchange"`
	AcceptsFinancing bool            `db:"accepts_financing"`
	Highlighted      bool            `db:"highlighted"`
	CreatedAt        string          `db:"created_at"`
}

const propertyColumns = `
    id, position, title, description, type, status, price, city, neighborhood, address,
    area, bedrooms, bathrooms, garage, built_area, amenities_json, images_json, lat, lng,
    accepts_exchange, accepts_financing, highlighted, created_at`

func (r *PropertyRepo) Load(ctx context.Context) ([]domain.Property, error) {
	var rows []propertyRow
	err := r.db.SelectContext(ctx, &rows, `SELECT`+propertyColumns+` FROM properties ORDER BY position`)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", row.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Save replaces the stored collection in one transaction.
func (r *PropertyRepo) Save(ctx context.Context, props []domain.Property) error {
	rows := make([]propertyRow, 0, len(props))
	for i, p := range props {
		row, err := fromDomain(i, p)
		if err != nil {
			return fmt.Errorf("property %s: %w", p.ID, err)
		}
		rows = append(rows, row)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM properties`); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO properties(`+propertyColumns+`)
			VALUES(
			  :id, :position, :title, :description, :type, :status, :price, :city, :neighborhood, :address,
			  :area, :bedrooms, :bathrooms, :garage, :built_area, :amenities_json, :images_json, :lat, :lng,
			  :accepts_exchange, :accepts_financing, :highlighted, :created_at)
		`, row); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func fromDomain(pos int, p domain.Property) (propertyRow, error) {
	amen, err := json.Marshal(nonNil(p.Amenities))
	if err != nil {
		return propertyRow{}, err
	}
	imgs, err := json.Marshal(nonNil(p.Images))
	if err != nil {
		return propertyRow{}, err
	}
	row := propertyRow{
		ID:               p.ID,
		Position:         pos,
		Title:            p.Title,
		Description:      p.Description,
		Type:             string(p.Type),
		Status:           string(p.Status),
		Price:            p.Price,
		City:             p.City,
		Neighborhood:     p.Neighborhood,
		Address:          p.Address,
		Area:             p.Features.Area,
		Bedrooms:         nullInt(p.Features.Bedrooms),
		Bathrooms:        nullInt(p.Features.Bathrooms),
		Garage:           nullInt(p.Features.Garage),
		AmenitiesJSON:    string(amen),
		ImagesJSON:       string(imgs),
		AcceptsExchange:  p.AcceptsExchange,
		AcceptsFinancing: p.AcceptsFinancing,
		Highlighted:      p.Highlighted,
		CreatedAt:        p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if p.Features.BuiltArea != nil {
		row.BuiltArea = sql.NullFloat64{Float64: *p.Features.BuiltArea, Valid: true}
	}
	if p.Coordinates != nil {
		row.Lat = sql.NullFloat64{Float64: p.Coordinates.Lat, Valid: true}
		row.Lng = sql.NullFloat64{Float64: p.Coordinates.Lng, Valid: true}
	}
	return row, nil
}

func (row propertyRow) toDomain() (domain.Property, error) {
	created, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return domain.Property{}, err
	}
	p := domain.Property{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description,
		Type:         domain.PropertyType(row.Type),
		Status:       domain.PropertyStatus(row.Status),
		Price:        row.Price,
		City:         row.City,
		Neighborhood: row.Neighborhood,
		Address:      row.Address,
		Features: domain.Features{
			Area:      row.Area,
			Bedrooms:  intOrNil(row.Bedrooms),
			Bathrooms: intOrNil(row.Bathrooms),
			Garage:    intOrNil(row.Garage),
		},
		AcceptsExchange:  row.AcceptsExchange,
		AcceptsFinancing: row.AcceptsFinancing,
		Highlighted:      row.Highlighted,
		CreatedAt:        created,
	}
	if row.BuiltArea.Valid {
		v := row.BuiltArea.Float64
		p.Features.BuiltArea = &v
	}
	if row.Lat.Valid && row.Lng.Valid {
		p.Coordinates = &domain.Coordinates{Lat: row.Lat.Float64, Lng: row.Lng.Float64}
	}
	if err := json.Unmarshal([]byte(row.AmenitiesJSON), &p.Amenities); err != nil {
		return domain.Property{}, fmt.Errorf("amenities: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ImagesJSON), &p.Images); err != nil {
		return domain.Property{}, fmt.Errorf("images: %w", err)
	}
	return p, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intOrNil(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
