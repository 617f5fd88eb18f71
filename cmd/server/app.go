package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"

	"smartscheduler/internal/availability"
	"smartscheduler/internal/calendar"
	"smartscheduler/internal/config"
	"smartscheduler/internal/google"
	"smartscheduler/internal/icsfeed"
	"smartscheduler/internal/logging"
	"smartscheduler/internal/repository"
	"smartscheduler/internal/service"
)

// app holds everything the commands share once config and the database are up.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB

	hosts     repository.HostRepository
	menus     *repository.MeetingTypeRepository
	schedules *repository.ScheduleRepository
	secrets   *repository.SecretRepository
	bookings  *repository.BookingRepository
	jobsRepo  *repository.JobRepository
	rulesRepo *repository.RuleRepository

	google       *google.Provider
	availability *service.AvailabilityService
	booking      *service.BookingService
	settings     *service.SettingsService
	rules        *service.RuleService
	calendar     *service.CalendarService
	auth         service.AuthService
	notify       *service.NotifyService
	jobs         *service.JobService
}

func newApp(c *cli.Context) (*app, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	conn, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}
	if err := conn.PingContext(c.Context); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		db:        conn,
		hosts:     repository.NewHostRepository(conn),
		menus:     repository.NewMeetingTypeRepository(conn),
		schedules: repository.NewScheduleRepository(conn, logger),
		secrets:   repository.NewSecretRepository(conn),
		bookings:  repository.NewBookingRepository(conn),
		jobsRepo:  repository.NewJobRepository(conn),
		rulesRepo: repository.NewRuleRepository(conn),
	}

	a.google = google.NewProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, logger)
	providers := calendar.NewRouter().
		Register(availability.ProviderGoogle, a.google).
		Register(availability.ProviderICS, icsfeed.NewProvider(icsfeed.NewPublicClient(cfg.ProviderTimeout()), logger))

	collector := availability.NewCollector(a.secrets, providers, cfg.ProviderTimeout(), logger)
	engine := availability.NewEngine(a.schedules, collector, cfg.OffsetMinutes())

	a.availability = service.NewAvailabilityService(engine, a.menus, a.hosts, cfg.Schedule.DefaultDurationMinutes)
	a.notify = service.NewNotifyService(service.NotifyConfig{
		SendGridAPIKey: cfg.SendGrid.APIKey,
		FromEmail:      cfg.SendGrid.FromEmail,
		FromName:       cfg.SendGrid.FromName,
		TwilioSID:      cfg.Twilio.AccountSID,
		TwilioToken:    cfg.Twilio.AuthToken,
		TwilioFrom:     cfg.Twilio.FromNumber,
		Location:       availability.FixedOffset(cfg.OffsetMinutes()),
	}, logger)
	a.booking = service.NewBookingService(service.BookingDeps{
		Availability: a.availability,
		Menus:        a.menus,
		Bookings:     a.bookings,
		Hosts:        a.hosts,
		Credentials:  a.secrets,
		Events:       a.google,
		Notifier:     a.notify,
		Logger:       logger,
	})
	a.settings = service.NewSettingsService(a.schedules, a.secrets, a.menus, cfg.OffsetMinutes())
	a.rules = service.NewRuleService(a.rulesRepo)
	a.calendar = service.NewCalendarService(a.secrets, a.google, logger)
	a.auth = service.NewAuthService(a.hosts, cfg.Auth.JWTSecret, cfg.TokenTTL())
	a.jobs = service.NewJobService(a.jobsRepo, cfg.PendingTTL(), logger)
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
