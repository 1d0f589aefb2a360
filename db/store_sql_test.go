package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/search"
	"github.com/meinhoongagan/bookify/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return NewStore(gdb), mock
}

func checkExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestHasConflictQuery(t *testing.T) {
	s, mock := newMockStore(t)
	providerID := uuid.New()
	start := time.Date(2031, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments" WHERE \(?provider_id = \$1 AND status <> \$2 AND date < \$3 AND ends_at > \$4\)?`).
		WithArgs(providerID, "cancelled", end, start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	taken, err := s.HasConflict(context.Background(), providerID, start, end)
	if err != nil || !taken {
		t.Errorf("HasConflict with one overlap = %v, %v; want true", taken, err)
	}
	taken, err = s.HasConflict(context.Background(), providerID, end, end.Add(time.Hour))
	if err != nil || taken {
		t.Errorf("HasConflict on a free span = %v, %v; want false", taken, err)
	}
	checkExpectations(t, mock)
}

func TestListAppointmentsSearchesServiceNames(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`(?s)SELECT count\(\*\) FROM "appointments" WHERE .*user_name ILIKE \$1 OR provider_name ILIKE \$2.*jsonb_array_elements\(services\) AS s WHERE s->>'name' ILIKE \$3`).
		WithArgs("%hair%", "%hair%", "%hair%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`(?s)SELECT \* FROM "appointments" WHERE .*jsonb_array_elements\(services\).*ORDER BY date DESC, created_at ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, total, err := s.ListAppointments(context.Background(), search.AppointmentFilter{Query: " hair ", Descending: true, Page: 1, Limit: 20})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if total != 0 || len(list) != 0 {
		t.Errorf("got %d rows, total %d", len(list), total)
	}
	checkExpectations(t, mock)
}

func appointmentRows(a models.Appointment) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "user_name", "provider_id", "provider_name", "services",
		"total_price", "date", "ends_at", "status", "created_at", "updated_at",
	}).AddRow(
		a.ID.String(), a.UserID.String(), a.UserName, a.ProviderID.String(), a.ProviderName,
		[]byte(`[{"id":"`+uuid.NewString()+`","name":"Haircut","price":"500","duration":"1 hr"}]`),
		a.TotalPrice, a.Date, a.EndsAt, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
}

func TestUpdateAppointmentStatusRestoresUserCopy(t *testing.T) {
	s, mock := newMockStore(t)
	date := time.Date(2031, 3, 10, 10, 0, 0, 0, time.UTC)
	a := models.Appointment{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		UserName:     "Asha Rao",
		ProviderID:   uuid.New(),
		ProviderName: "Trim & Shine",
		TotalPrice:   500,
		Date:         date,
		EndsAt:       date.Add(time.Hour),
		Status:       models.StatusConfirmed,
		CreatedAt:    date.Add(-time.Hour),
		UpdatedAt:    date.Add(-time.Hour),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(appointmentRows(a))
	mock.ExpectExec(`UPDATE "appointments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "user_appointments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "user_appointments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := s.UpdateAppointmentStatus(context.Background(), a.ID, models.StatusCancelled)
	if err != nil {
		t.Fatalf("UpdateAppointmentStatus: %v", err)
	}
	if got.Status != models.StatusCancelled || got.ID != a.ID {
		t.Errorf("got %s %s, want %s cancelled", got.ID, got.Status, a.ID)
	}
	checkExpectations(t, mock)
}

func TestUpdateAppointmentStatusRejectsTransition(t *testing.T) {
	s, mock := newMockStore(t)
	date := time.Date(2031, 3, 10, 10, 0, 0, 0, time.UTC)
	a := models.Appointment{
		ID: uuid.New(), UserID: uuid.New(), ProviderID: uuid.New(),
		Date: date, EndsAt: date.Add(time.Hour), Status: models.StatusCancelled,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(appointmentRows(a))
	mock.ExpectRollback()

	_, err := s.UpdateAppointmentStatus(context.Background(), a.ID, models.StatusConfirmed)
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("reconfirming a cancelled appointment = %v, want ErrInvalidTransition", err)
	}
	checkExpectations(t, mock)
}

func TestCreateAppointmentWritesBothTables(t *testing.T) {
	s, mock := newMockStore(t)
	date := time.Date(2031, 3, 10, 10, 0, 0, 0, time.UTC)
	a := &models.Appointment{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ProviderID: uuid.New(),
		Services:   []models.BookedService{{ID: uuid.New(), Name: "Haircut", Price: "500", Duration: "1 hr"}},
		TotalPrice: 500,
		Date:       date,
		EndsAt:     date.Add(time.Hour),
		Status:     models.StatusConfirmed,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "appointments"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "user_appointments"`).WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	err := s.CreateAppointment(context.Background(), a)
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("CreateAppointment with a failing copy = %v, want ErrConflict", err)
	}
	checkExpectations(t, mock)
}

func TestGetAppointmentNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := s.GetAppointment(context.Background(), uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetAppointment on an empty table = %v, want ErrNotFound", err)
	}
	checkExpectations(t, mock)
}
