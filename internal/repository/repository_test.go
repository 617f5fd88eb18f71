package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartscheduler/internal/availability"
	"smartscheduler/internal/db"
	"smartscheduler/internal/logging"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return conn, mock
}

var userScope = availability.Scope{Kind: availability.ScopeUser, ID: "u1"}

func TestScheduleConfig_Absent(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery("SELECT business_hours").WithArgs("user", "u1").WillReturnError(sql.ErrNoRows)

	cfg, err := NewScheduleRepository(conn, logging.Discard()).ScheduleConfig(context.Background(), userScope)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestScheduleConfig_Parsed(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery("SELECT business_hours").WithArgs("user", "u1").WillReturnRows(
		sqlmock.NewRows([]string{"business_hours", "utc_offset_minutes", "updated_at"}).
			AddRow([]byte(`{"Monday":{"active":true,"start":"09:00","end":"12:00"},"holiday":{}}`), int64(60), time.Now()))

	cfg, err := NewScheduleRepository(conn, logging.Discard()).ScheduleConfig(context.Background(), userScope)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.NotNil(t, cfg.OffsetMinutes)
	assert.Equal(t, 60, *cfg.OffsetMinutes)
	assert.Equal(t, "09:00", cfg.Days["monday"].Start)
	assert.NotContains(t, cfg.Days, "holiday")
}

func TestScheduleConfig_MalformedFallsBack(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery("SELECT business_hours").WithArgs("user", "u1").WillReturnRows(
		sqlmock.NewRows([]string{"business_hours", "utc_offset_minutes", "updated_at"}).
			AddRow([]byte(`["not","an","object"]`), int64(99999), time.Now()))

	cfg, err := NewScheduleRepository(conn, logging.Discard()).ScheduleConfig(context.Background(), userScope)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Nil(t, cfg.Days)
	assert.Nil(t, cfg.OffsetMinutes)
}

func TestScheduleConfig_StoreError(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery("SELECT business_hours").WillReturnError(errors.New("connection refused"))

	_, err := NewScheduleRepository(conn, logging.Discard()).ScheduleConfig(context.Background(), userScope)
	assert.ErrorContains(t, err, "connection refused")
}

func TestSaveSchedule(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectExec("INSERT INTO schedule_settings").
		WithArgs("workspace", "w1", sqlmock.AnyArg(), int64(-300)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	offset := -300
	err := NewScheduleRepository(conn, logging.Discard()).SaveSchedule(context.Background(),
		availability.Scope{Kind: availability.ScopeWorkspace, ID: "w1"},
		availability.WeeklySchedule{"friday": {Start: "09:00", End: "17:00"}}, &offset)
	assert.NoError(t, err)
}

func TestCredential(t *testing.T) {
	conn, mock := newMock(t)
	expiry := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT provider").WithArgs("u1").WillReturnRows(
		sqlmock.NewRows([]string{"provider", "access_token", "refresh_token", "token_expiry", "feed_url"}).
			AddRow("google", "at", "rt", expiry, nil))
	mock.ExpectQuery("SELECT provider").WithArgs("u2").WillReturnError(sql.ErrNoRows)

	repo := NewSecretRepository(conn)
	cred, err := repo.Credential(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &availability.Credential{
		ParticipantID: "u1",
		Provider:      availability.ProviderGoogle,
		AccessToken:   "at",
		RefreshToken:  "rt",
		Expiry:        expiry,
	}, cred)

	cred, err = repo.Credential(context.Background(), "u2")
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestMeetingTypeBySlug_HostsInOrder(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery("FROM meeting_types mt").WithArgs("team-sync").WillReturnRows(
		sqlmock.NewRows([]string{"id", "workspace_id", "title", "slug", "duration_minutes", "booking_method", "created_at", "hosts"}).
			AddRow("mt1", "w1", "Team sync", "team-sync", 30, "or", time.Now(), []byte("{u2,u1}")))

	mt, err := NewMeetingTypeRepository(conn).GetBySlug(context.Background(), "team-sync")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1"}, mt.HostIDs)
	assert.Equal(t, "or", mt.BookingMethod)
	assert.Equal(t, 30, mt.DurationMinutes)
}

func TestMarkApproved_NotPending(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectExec("UPDATE booking_requests").
		WithArgs("b1", db.StatusApproved, "evt", "https://meet.google.com/abc", db.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewBookingRepository(conn).MarkApproved(context.Background(), "b1", "evt", "https://meet.google.com/abc")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestListByHost_FiltersStatus(t *testing.T) {
	conn, mock := newMock(t)
	start := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	cols := []string{"id", "meeting_type_id", "workspace_id", "host_user_id", "guest_name", "guest_email", "note",
		"start_time", "end_time", "status", "calendar_event_id", "meet_link", "created_at", "updated_at"}
	mock.ExpectQuery("FROM booking_requests WHERE host_user_id = \\$1 AND status = \\$2").
		WithArgs("u1", "pending").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("b1", "mt1", nil, "u1", "Guest", "g@example.com", "", start, start.Add(time.Hour), "pending", "", "", start, start))

	list, err := NewBookingRepository(conn).ListByHost(context.Background(), "u1", "pending")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].MeetingTypeID)
	assert.Equal(t, "mt1", *list[0].MeetingTypeID)
	assert.Nil(t, list[0].WorkspaceID)
}

func TestUpdateStatuses(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewJobRepository(conn)

	n, err := repo.UpdateStatuses(context.Background(), nil, db.StatusPending, db.StatusExpired)
	require.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectExec("UPDATE booking_requests SET status").
		WithArgs(db.StatusExpired, sqlmock.AnyArg(), db.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 2))
	n, err = repo.UpdateStatuses(context.Background(), []string{"b1", "b2"}, db.StatusPending, db.StatusExpired)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMigrate(t *testing.T) {
	conn, mock := newMock(t)
	for range migrations {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	assert.NoError(t, Migrate(context.Background(), conn))
}

func TestHasOverlap(t *testing.T) {
	conn, mock := newMock(t)
	start := time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	mock.ExpectQuery("start_time < \\$3\\s+AND end_time > \\$2").
		WithArgs("u1", start, end, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := NewBookingRepository(conn).HasOverlap(context.Background(), "u1", start, end, db.StatusPending, db.StatusApproved)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestCreateBooking_DuplicateSlot(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO booking_requests").WillReturnError(&pq.Error{Code: "23505"})

	start := time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)
	err := NewBookingRepository(conn).Create(context.Background(), &db.BookingRequest{
		ID: "3f2b8c1e-6f0a-4a47-9a53-6f5d2c9e1b10", HostUserID: "u1", GuestName: "Guest", GuestEmail: "g@example.com",
		StartTime: start, EndTime: start.Add(time.Hour), Status: db.StatusPending,
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestGetByID_NonUUIDSkipsQuery(t *testing.T) {
	conn, _ := newMock(t)
	ctx := context.Background()

	mt, err := NewMeetingTypeRepository(conn).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, mt)

	host, err := NewHostRepository(conn).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, host)

	b, err := NewBookingRepository(conn).GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestIsWorkspaceHost(t *testing.T) {
	conn, mock := newMock(t)
	mock.ExpectQuery("JOIN meeting_hosts").WithArgs("w1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("JOIN meeting_hosts").WithArgs("w2", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	repo := NewMeetingTypeRepository(conn)
	member, err := repo.IsWorkspaceHost(context.Background(), "w1", "u1")
	require.NoError(t, err)
	assert.True(t, member)

	member, err = repo.IsWorkspaceHost(context.Background(), "w2", "u1")
	require.NoError(t, err)
	assert.False(t, member)
}

func TestRules(t *testing.T) {
	conn, mock := newMock(t)
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO meeting_rules").
		WithArgs("r1", "u1", "Monthly review", int64(25), "", int64(60)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectQuery("FROM meeting_rules WHERE user_id = \\$1").WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "target_day", "prompt_custom", "duration_minutes", "created_at"}))

	repo := NewRuleRepository(conn)
	rule := &db.MeetingRule{ID: "r1", UserID: "u1", Title: "Monthly review", TargetDay: 25, DurationMinutes: 60}
	require.NoError(t, repo.Create(context.Background(), rule))
	assert.Equal(t, created, rule.CreatedAt)

	rules, err := repo.ListByUser(context.Background(), "u2")
	require.NoError(t, err)
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}
