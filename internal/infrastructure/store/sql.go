package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"garage-dashboard/internal/domain/model"
	"garage-dashboard/internal/infrastructure/logger"
	"garage-dashboard/internal/port/outbound"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
)

// SQLStore implements outbound.Store on database/sql for both SQLite and
// PostgreSQL. Queries are written with ? placeholders and rebound per dialect.
// Times are stored as unix milliseconds, booked items as JSON text.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

var _ outbound.Store = (*SQLStore)(nil)

// OpenSQLite opens (or creates) the database at dsn and migrates it.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, dsn string, log logger.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return newSQLStore(ctx, db, dialectSQLite, log)
}

// OpenPostgres connects through the pgx database/sql driver and migrates.
func OpenPostgres(ctx context.Context, dsn string, log logger.Logger) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, dialectPostgres, log)
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect string, log logger.Logger) (*SQLStore, error) {
	if err := migrate(ctx, db, dialect, log); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

// rebind rewrites ? placeholders to $n for PostgreSQL.
func rebind(dialect, query string) string {
	if dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, rebind(s.dialect, query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, rebind(s.dialect, query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, rebind(s.dialect, query), args...)
}

// insert runs an INSERT ... RETURNING id.
func (s *SQLStore) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := s.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// mustAffect maps a zero-row UPDATE or DELETE to ErrNotFound.
func mustAffect(res sql.Result, err error, entity string, id int64) error {
	if err != nil {
		return fmt.Errorf("write %s %d: %w", entity, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write %s %d: %w", entity, id, err)
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

func scanErr(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(entity, id)
	}
	return fmt.Errorf("read %s %d: %w", entity, id, err)
}

type scanner interface {
	Scan(dest ...any) error
}

// nullable unwraps optional text so every driver sees a plain value or NULL.
func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Garages

const garageColumns = `id, name, address, lat, lng, status, email, phone, avatar`

func scanGarage(r scanner) (model.Garage, error) {
	var g model.Garage
	err := r.Scan(&g.ID, &g.Name, &g.Address, &g.Lat, &g.Lng, &g.Status, &g.Email, &g.Phone, &g.Avatar)
	return g, err
}

func (s *SQLStore) GetGarage(ctx context.Context, id int64) (model.Garage, error) {
	g, err := scanGarage(s.queryRow(ctx, `SELECT `+garageColumns+` FROM garages WHERE id = ?`, id))
	if err != nil {
		return model.Garage{}, scanErr(err, "garage", id)
	}
	return g, nil
}

func (s *SQLStore) ListGarages(ctx context.Context) ([]model.Garage, error) {
	rows, err := s.query(ctx, `SELECT `+garageColumns+` FROM garages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list garages: %w", err)
	}
	return collect(rows, scanGarage)
}

func (s *SQLStore) CreateGarage(ctx context.Context, g model.Garage) (model.Garage, error) {
	id, err := s.insert(ctx,
		`INSERT INTO garages (name, address, lat, lng, status, email, phone, avatar) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Name, g.Address, g.Lat, g.Lng, string(g.Status), g.Email, g.Phone, nullable(g.Avatar))
	if err != nil {
		return model.Garage{}, fmt.Errorf("create garage: %w", err)
	}
	g.ID = id
	return g, nil
}

func (s *SQLStore) UpdateGarage(ctx context.Context, g model.Garage) (model.Garage, error) {
	res, err := s.exec(ctx,
		`UPDATE garages SET name = ?, address = ?, lat = ?, lng = ?, status = ?, email = ?, phone = ?, avatar = ? WHERE id = ?`,
		g.Name, g.Address, g.Lat, g.Lng, string(g.Status), g.Email, g.Phone, nullable(g.Avatar), g.ID)
	if err := mustAffect(res, err, "garage", g.ID); err != nil {
		return model.Garage{}, err
	}
	return g, nil
}

// Services

const serviceColumns = `id, garage_id, name, description, price, duration, image_url, category, is_active`

func scanService(r scanner) (model.Service, error) {
	var v model.Service
	err := r.Scan(&v.ID, &v.GarageID, &v.Name, &v.Description, &v.Price, &v.Duration, &v.ImageURL, &v.Category, &v.IsActive)
	return v, err
}

func (s *SQLStore) GetService(ctx context.Context, id int64) (model.Service, error) {
	v, err := scanService(s.queryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id))
	if err != nil {
		return model.Service{}, scanErr(err, "service", id)
	}
	return v, nil
}

func (s *SQLStore) ListServicesByGarage(ctx context.Context, garageID int64) ([]model.Service, error) {
	rows, err := s.query(ctx, `SELECT `+serviceColumns+` FROM services WHERE garage_id = ? ORDER BY id`, garageID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return collect(rows, scanService)
}

func (s *SQLStore) CreateService(ctx context.Context, v model.Service) (model.Service, error) {
	id, err := s.insert(ctx,
		`INSERT INTO services (garage_id, name, description, price, duration, image_url, category, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.GarageID, v.Name, v.Description, v.Price, int64(v.Duration), nullable(v.ImageURL), v.Category, v.IsActive)
	if err != nil {
		return model.Service{}, fmt.Errorf("create service: %w", err)
	}
	v.ID = id
	return v, nil
}

func (s *SQLStore) UpdateService(ctx context.Context, v model.Service) (model.Service, error) {
	res, err := s.exec(ctx,
		`UPDATE services SET name = ?, description = ?, price = ?, duration = ?, image_url = ?, category = ?, is_active = ? WHERE id = ?`,
		v.Name, v.Description, v.Price, int64(v.Duration), nullable(v.ImageURL), v.Category, v.IsActive, v.ID)
	if err := mustAffect(res, err, "service", v.ID); err != nil {
		return model.Service{}, err
	}
	return v, nil
}

func (s *SQLStore) DeleteService(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM services WHERE id = ?`, id)
	return mustAffect(res, err, "service", id)
}

// Products

const productColumns = `id, garage_id, name, description, price, stock, image_url, category, is_active`

func scanProduct(r scanner) (model.Product, error) {
	var v model.Product
	err := r.Scan(&v.ID, &v.GarageID, &v.Name, &v.Description, &v.Price, &v.Stock, &v.ImageURL, &v.Category, &v.IsActive)
	return v, err
}

func (s *SQLStore) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	v, err := scanProduct(s.queryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err != nil {
		return model.Product{}, scanErr(err, "product", id)
	}
	return v, nil
}

func (s *SQLStore) ListProductsByGarage(ctx context.Context, garageID int64) ([]model.Product, error) {
	rows, err := s.query(ctx, `SELECT `+productColumns+` FROM products WHERE garage_id = ? ORDER BY id`, garageID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collect(rows, scanProduct)
}

func (s *SQLStore) CreateProduct(ctx context.Context, v model.Product) (model.Product, error) {
	id, err := s.insert(ctx,
		`INSERT INTO products (garage_id, name, description, price, stock, image_url, category, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.GarageID, v.Name, v.Description, v.Price, int64(v.Stock), nullable(v.ImageURL), v.Category, v.IsActive)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}
	v.ID = id
	return v, nil
}

func (s *SQLStore) UpdateProduct(ctx context.Context, v model.Product) (model.Product, error) {
	res, err := s.exec(ctx,
		`UPDATE products SET name = ?, description = ?, price = ?, stock = ?, image_url = ?, category = ?, is_active = ? WHERE id = ?`,
		v.Name, v.Description, v.Price, int64(v.Stock), nullable(v.ImageURL), v.Category, v.IsActive, v.ID)
	if err := mustAffect(res, err, "product", v.ID); err != nil {
		return model.Product{}, err
	}
	return v, nil
}

func (s *SQLStore) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM products WHERE id = ?`, id)
	return mustAffect(res, err, "product", id)
}

// Drivers

const driverColumns = `id, name, email, phone, password_hash, address, zip, vehicle_make, vehicle_model, vehicle_year, avatar, last_active`

func scanDriver(r scanner) (model.Driver, error) {
	var d model.Driver
	var lastActive int64
	err := r.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.PasswordHash, &d.Address, &d.Zip,
		&d.VehicleMake, &d.VehicleModel, &d.VehicleYear, &d.Avatar, &lastActive)
	d.LastActive = fromMillis(lastActive)
	return d, err
}

func (s *SQLStore) GetDriver(ctx context.Context, id int64) (model.Driver, error) {
	d, err := scanDriver(s.queryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = ?`, id))
	if err != nil {
		return model.Driver{}, scanErr(err, "driver", id)
	}
	return d, nil
}

func (s *SQLStore) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	rows, err := s.query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	return collect(rows, scanDriver)
}

func (s *SQLStore) CreateDriver(ctx context.Context, d model.Driver) (model.Driver, error) {
	id, err := s.insert(ctx,
		`INSERT INTO drivers (name, email, phone, password_hash, address, zip, vehicle_make, vehicle_model, vehicle_year, avatar, last_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Name, d.Email, d.Phone, d.PasswordHash, nullable(d.Address), nullable(d.Zip),
		d.VehicleMake, d.VehicleModel, d.VehicleYear, nullable(d.Avatar), millis(d.LastActive))
	if err != nil {
		return model.Driver{}, fmt.Errorf("create driver: %w", err)
	}
	d.ID = id
	d.LastActive = fromMillis(millis(d.LastActive))
	return d, nil
}

func (s *SQLStore) UpdateDriver(ctx context.Context, d model.Driver) (model.Driver, error) {
	res, err := s.exec(ctx,
		`UPDATE drivers SET name = ?, email = ?, phone = ?, password_hash = ?, address = ?, zip = ?,
		 vehicle_make = ?, vehicle_model = ?, vehicle_year = ?, avatar = ?, last_active = ? WHERE id = ?`,
		d.Name, d.Email, d.Phone, d.PasswordHash, nullable(d.Address), nullable(d.Zip),
		d.VehicleMake, d.VehicleModel, d.VehicleYear, nullable(d.Avatar), millis(d.LastActive), d.ID)
	if err := mustAffect(res, err, "driver", d.ID); err != nil {
		return model.Driver{}, err
	}
	d.LastActive = fromMillis(millis(d.LastActive))
	return d, nil
}

// Bookings

const bookingColumns = `id, booking_number, garage_id, driver_id, date, status, total_price, notes, services_booked, products_booked, created_at`

func scanBooking(r scanner) (model.Booking, error) {
	var (
		b                  model.Booking
		date, createdAt    int64
		services, products string
	)
	if err := r.Scan(&b.ID, &b.BookingNumber, &b.GarageID, &b.DriverID, &date, &b.Status, &b.TotalPrice,
		&b.Notes, &services, &products, &createdAt); err != nil {
		return model.Booking{}, err
	}
	b.Date = fromMillis(date)
	b.CreatedAt = fromMillis(createdAt)
	if err := json.Unmarshal([]byte(services), &b.ServicesBooked); err != nil {
		return model.Booking{}, fmt.Errorf("booking %d services_booked: %w", b.ID, err)
	}
	if err := json.Unmarshal([]byte(products), &b.ProductsBooked); err != nil {
		return model.Booking{}, fmt.Errorf("booking %d products_booked: %w", b.ID, err)
	}
	if b.ServicesBooked == nil {
		b.ServicesBooked = []model.BookedService{}
	}
	if b.ProductsBooked == nil {
		b.ProductsBooked = []model.BookedProduct{}
	}
	return b, nil
}

func bookedJSON(b model.Booking) (string, string, error) {
	services := b.ServicesBooked
	if services == nil {
		services = []model.BookedService{}
	}
	products := b.ProductsBooked
	if products == nil {
		products = []model.BookedProduct{}
	}
	sj, err := json.Marshal(services)
	if err != nil {
		return "", "", err
	}
	pj, err := json.Marshal(products)
	if err != nil {
		return "", "", err
	}
	return string(sj), string(pj), nil
}

// normalize returns b as it reads back from the database.
func normalize(b model.Booking) model.Booking {
	b.Date = fromMillis(millis(b.Date))
	b.CreatedAt = fromMillis(millis(b.CreatedAt))
	if b.ServicesBooked == nil {
		b.ServicesBooked = []model.BookedService{}
	}
	if b.ProductsBooked == nil {
		b.ProductsBooked = []model.BookedProduct{}
	}
	return b
}

func (s *SQLStore) GetBooking(ctx context.Context, id int64) (model.Booking, error) {
	b, err := scanBooking(s.queryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return model.Booking{}, scanErr(err, "booking", id)
	}
	return b, nil
}

func (s *SQLStore) ListBookingsByGarage(ctx context.Context, garageID int64) ([]model.Booking, error) {
	rows, err := s.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE garage_id = ? ORDER BY id`, garageID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return collect(rows, scanBooking)
}

func (s *SQLStore) ListBookingsByDriver(ctx context.Context, driverID int64) ([]model.Booking, error) {
	rows, err := s.query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE driver_id = ? ORDER BY id`, driverID)
	if err != nil {
		return nil, fmt.Errorf("list driver bookings: %w", err)
	}
	return collect(rows, scanBooking)
}

func (s *SQLStore) ListBookingsBetween(ctx context.Context, garageID int64, from, to time.Time) ([]model.Booking, error) {
	rows, err := s.query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE garage_id = ? AND date >= ? AND date < ? ORDER BY id`,
		garageID, millis(from), millis(to))
	if err != nil {
		return nil, fmt.Errorf("list bookings between: %w", err)
	}
	return collect(rows, scanBooking)
}

func (s *SQLStore) CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	services, products, err := bookedJSON(b)
	if err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	id, err := s.insert(ctx,
		`INSERT INTO bookings (booking_number, garage_id, driver_id, date, status, total_price, notes, services_booked, products_booked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.BookingNumber, b.GarageID, b.DriverID, millis(b.Date), string(b.Status), b.TotalPrice,
		nullable(b.Notes), services, products, millis(b.CreatedAt))
	if err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	b.ID = id
	return normalize(b), nil
}

func (s *SQLStore) UpdateBooking(ctx context.Context, b model.Booking) (model.Booking, error) {
	services, products, err := bookedJSON(b)
	if err != nil {
		return model.Booking{}, fmt.Errorf("update booking: %w", err)
	}
	res, err := s.exec(ctx,
		`UPDATE bookings SET booking_number = ?, garage_id = ?, driver_id = ?, date = ?, status = ?, total_price = ?,
		 notes = ?, services_booked = ?, products_booked = ? WHERE id = ?`,
		b.BookingNumber, b.GarageID, b.DriverID, millis(b.Date), string(b.Status), b.TotalPrice,
		nullable(b.Notes), services, products, b.ID)
	if err := mustAffect(res, err, "booking", b.ID); err != nil {
		return model.Booking{}, err
	}
	return normalize(b), nil
}
