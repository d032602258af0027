package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockedGormStore(t *testing.T) (*GormFlightStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	return &GormFlightStore{db: gdb}, mock
}

func TestGormPageIDsQuery(t *testing.T) {
	store, mock := newMockedGormStore(t)
	mock.ExpectQuery(`SELECT "id" FROM "m_flights" ORDER BY departure_date ASC, origin ASC, id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7).AddRow(3).AddRow(9))

	ids, err := store.PageIDs(context.Background(), 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 || ids[0] != 7 || ids[1] != 3 || ids[2] != 9 {
		t.Fatalf("ids = %v", ids)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGormCount(t *testing.T) {
	store, mock := newMockedGormStore(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "m_flights"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1234))

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1234 {
		t.Fatalf("count = %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGormFindByIDs(t *testing.T) {
	store, mock := newMockedGormStore(t)
	rows := sqlmock.NewRows([]string{"id", "origin", "destination", "airline", "departure_date", "duration_minutes", "economy_price"}).
		AddRow(1, "JFK", "LAX", "Blue Horizon", "2025-01-01", 330, 199.99).
		AddRow(2, "GRU", "GIG", "Falcon Jet", "05/03/2025", 55, 89.5)
	mock.ExpectQuery(`SELECT \* FROM "m_flights" WHERE id IN`).WillReturnRows(rows)

	flights, err := store.FindByIDs(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(flights) != 2 {
		t.Fatalf("got %d flights", len(flights))
	}
	if flights[0].Origin != "JFK" || flights[0].EconomyPrice != 199.99 {
		t.Fatalf("row mapping lost fields: %+v", flights[0])
	}
	// The raw date string passes through untouched
	if flights[1].DepartureDate != "05/03/2025" {
		t.Fatalf("departure date mangled: %q", flights[1].DepartureDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGormFindByIDsEmptyInput(t *testing.T) {
	store, _ := newMockedGormStore(t)
	flights, err := store.FindByIDs(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if flights != nil {
		t.Fatalf("expected no query and no result, got %+v", flights)
	}
}

func TestGormErrorsPropagate(t *testing.T) {
	store, mock := newMockedGormStore(t)
	mock.ExpectQuery(`SELECT "id" FROM "m_flights"`).WillReturnError(errors.New("connection reset"))
	if _, err := store.PageIDs(context.Background(), 0, 10); err == nil {
		t.Fatal("expected the store error to propagate")
	}
}
