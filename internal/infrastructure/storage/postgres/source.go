package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"salesboard/internal/core/apperror"
	"salesboard/internal/domain/records"
)

var tracer = otel.Tracer("salesboard/postgres")

// Source implements the report data source over a direct connection.
// Identifier columns are cast to text in the query so string and numeric
// id schemes read identically.
type Source struct {
	pool    *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

// NewSource creates a database-backed source.
func NewSource(pool *pgxpool.Pool) *Source {
	return &Source{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type saleRow struct {
	SaleDate   *time.Time       `db:"sale_date"`
	LocationID *string          `db:"location_id"`
	ProductID  *string          `db:"product_id"`
	Quantity   *int64           `db:"quantity"`
	TotalPrice *decimal.Decimal `db:"total_price"`
}

type locationRow struct {
	LocationID *string `db:"location_id"`
	Name       *string `db:"location"`
}

type importRow struct {
	LocationID *string    `db:"location_id"`
	ProductID  *string    `db:"product_id"`
	Quantity   *int64     `db:"quantity"`
	ImportDate *time.Time `db:"import_date"`
	CreatedAt  *time.Time `db:"created_at"`
}

func (s *Source) selectAll(ctx context.Context, table string, columns []string, dest any) error {
	ctx, span := tracer.Start(ctx, "postgres.select_all")
	span.SetAttributes(attribute.String("table", table))
	defer span.End()

	query, args, err := s.builder.Select(columns...).From(table).ToSql()
	if err != nil {
		return apperror.NewInternal(err)
	}
	if err := pgxscan.Select(ctx, s.pool, dest, query, args...); err != nil {
		return apperror.NewUpstream(err).WithDetail("table", table)
	}
	return nil
}

// FetchSales reads the Sale table. Rows missing a date, quantity or
// total are rejected, matching the REST path's validation boundary.
func (s *Source) FetchSales(ctx context.Context) ([]records.Sale, int, error) {
	var rows []saleRow
	columns := []string{
		"sale_date",
		`location_id::text AS location_id`,
		`product_id::text AS product_id`,
		"quantity",
		"total_price",
	}
	if err := s.selectAll(ctx, `"Sale"`, columns, &rows); err != nil {
		return nil, 0, err
	}

	sales := make([]records.Sale, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if row.SaleDate == nil || row.Quantity == nil || row.TotalPrice == nil {
			dropped++
			continue
		}
		sales = append(sales, records.Sale{
			SaleDate:   *row.SaleDate,
			LocationID: deref(row.LocationID),
			ProductID:  orUnknown(row.ProductID),
			Quantity:   *row.Quantity,
			TotalPrice: *row.TotalPrice,
		})
	}
	return sales, dropped, nil
}

// FetchLocations reads the Location table.
func (s *Source) FetchLocations(ctx context.Context) ([]records.Location, int, error) {
	var rows []locationRow
	columns := []string{
		`location_id::text AS location_id`,
		"location",
	}
	if err := s.selectAll(ctx, `"Location"`, columns, &rows); err != nil {
		return nil, 0, err
	}

	locations := make([]records.Location, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if row.LocationID == nil || *row.LocationID == "" {
			dropped++
			continue
		}
		locations = append(locations, records.Location{
			LocationID: *row.LocationID,
			Name:       deref(row.Name),
		})
	}
	return locations, dropped, nil
}

// FetchImports reads the Import table, preferring import_date over
// created_at for the event date.
func (s *Source) FetchImports(ctx context.Context) ([]records.Import, int, error) {
	var rows []importRow
	columns := []string{
		`location_id::text AS location_id`,
		`product_id::text AS product_id`,
		"quantity",
		"import_date",
		"created_at",
	}
	if err := s.selectAll(ctx, `"Import"`, columns, &rows); err != nil {
		return nil, 0, err
	}

	imports := make([]records.Import, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		date := row.ImportDate
		if date == nil {
			date = row.CreatedAt
		}
		if date == nil || row.Quantity == nil {
			dropped++
			continue
		}
		imports = append(imports, records.Import{
			LocationID: deref(row.LocationID),
			ProductID:  orUnknown(row.ProductID),
			Quantity:   *row.Quantity,
			ImportDate: *date,
		})
	}
	return imports, dropped, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return records.UnknownKey
	}
	return *s
}
