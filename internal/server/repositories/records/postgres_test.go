package records

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/memoriesapp/memories/internal/common"
	"github.com/memoriesapp/memories/internal/memory"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const selectQuery = `(?s)^SELECT\s+owner,\s*moment,\s*year,\s*description,\s*image,\s*star,\s*favourite,\s*latitude,\s*longitude,\s*schema_version\s+FROM\s+memory_records\s+WHERE\s+owner\s*=\s*\$1\s+AND\s+substr\(moment,\s*5,\s*4\)\s*=\s*\$2\s*$`
const insertQuery = `(?s)^INSERT\s+INTO\s+memory_records\s*\(owner,\s*moment,\s*year,\s*description,\s*image,\s*star,\s*favourite,\s*latitude,\s*longitude,\s*schema_version\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8,\s*\$9,\s*\$10\)\s*$`
const updateQuery = `(?s)^UPDATE\s+memory_records\s+SET\s+year\s*=\s*\$3,.*WHERE\s+owner\s*=\s*\$1\s+AND\s+moment\s*=\s*\$2\s*$`

func testRecord(t *testing.T) memory.Record {
	t.Helper()
	coords := &memory.Coordinates{Latitude: 50.63, Longitude: 3.06}
	m, err := memory.New("u1", time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC), "coffee", "img.jpg", 3, true, coords)
	if err != nil {
		t.Fatalf("memory.New error: %v", err)
	}
	return m.ToRecord()
}

func recordColumns() []string {
	return []string{"owner", "moment", "year", "description", "image", "star", "favourite", "latitude", "longitude", "schema_version"}
}

func TestQueryToday_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(recordColumns()).
		AddRow("u1", "20240615090000", 2024, "coffee", "img.jpg", 3, true, 50.63, 3.06, 2).
		AddRow("u1", "20220615180000", 2022, nil, "old.jpg", nil, nil, nil, nil, 2)
	mock.ExpectQuery(selectQuery).
		WithArgs("u1", "0615").
		WillReturnRows(rows)

	got, err := repo.QueryToday(context.Background(), "u1", "0615")
	if err != nil {
		t.Fatalf("QueryToday error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	first := got[0]
	if first.Owner != "u1" || first.Moment != "20240615090000" || first.Year != 2024 {
		t.Fatalf("unexpected record: %+v", first)
	}
	if first.Description == nil || *first.Description != "coffee" {
		t.Fatalf("unexpected description: %+v", first.Description)
	}
	if first.Star == nil || *first.Star != 3 || first.Favourite == nil || !*first.Favourite {
		t.Fatalf("unexpected star/favourite: %+v", first)
	}
	if first.Coordinates == nil || first.Coordinates.Latitude != 50.63 || first.Coordinates.Longitude != 3.06 {
		t.Fatalf("unexpected coordinates: %+v", first.Coordinates)
	}

	// NULL optionals come back as absent
	second := got[1]
	if second.Description != nil || second.Star != nil || second.Favourite != nil || second.Coordinates != nil {
		t.Fatalf("expected absent optionals, got %+v", second)
	}
}

func TestQueryToday_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).
		WithArgs("u1", "0615").
		WillReturnRows(sqlmock.NewRows(recordColumns()))

	got, err := repo.QueryToday(context.Background(), "u1", "0615")
	if err != nil {
		t.Fatalf("QueryToday error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestQueryToday_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).
		WithArgs("u1", "0615").
		WillReturnError(errors.New("db down"))

	_, err := repo.QueryToday(context.Background(), "u1", "0615")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := testRecord(t)
	mock.ExpectExec(insertQuery).
		WithArgs(rec.Owner, rec.Moment, rec.Year,
			rec.Description, rec.Image, rec.Star, rec.Favourite,
			50.63, 3.06, rec.SchemaVersion).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_AbsentOptionalsAsNulls(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	m, err := memory.New("u1", time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC), "", "img.jpg", 0, false, nil)
	if err != nil {
		t.Fatalf("memory.New error: %v", err)
	}
	rec := m.ToRecord()

	mock.ExpectExec(insertQuery).
		WithArgs(rec.Owner, rec.Moment, rec.Year,
			nil, rec.Image, nil, nil,
			nil, nil, rec.SchemaVersion).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := testRecord(t)
	mock.ExpectExec(insertQuery).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), rec)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := testRecord(t)
	mock.ExpectExec(updateQuery).
		WithArgs(rec.Owner, rec.Moment, rec.Year,
			rec.Description, rec.Image, rec.Star, rec.Favourite,
			50.63, 3.06, rec.SchemaVersion).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), rec); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := testRecord(t)
	mock.ExpectExec(updateQuery).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), rec)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := testRecord(t)
	mock.ExpectExec(updateQuery).
		WillReturnError(errors.New("db down"))

	err := repo.Update(context.Background(), rec)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
