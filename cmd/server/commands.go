package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"smartscheduler/internal/api"
	"smartscheduler/internal/availability"
	"smartscheduler/internal/db"
	"smartscheduler/internal/entities"
	"smartscheduler/internal/repository"
)

func serve(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET not set")
	}

	router := api.NewRouter(api.Handlers{
		Booking: api.NewBookingHandler(a.availability, a.booking, a.logger),
		Host:    api.NewHostHandler(a.booking, a.settings, a.rules, a.calendar, a.logger),
		Auth:    api.NewAuthHandler(a.auth, a.logger),
	}, a.cfg.Auth.JWTSecret)

	cors := handlers.CORS(
		handlers.AllowedOrigins(a.cfg.Server.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	handler := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.CombinedLoggingHandler(os.Stdout, cors(router)),
	)

	scheduler := cron.New()
	if err := a.jobs.Register(scheduler, a.cfg.Jobs.ExpirePendingSpec, a.cfg.Jobs.FinishSpec); err != nil {
		return err
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server running", "port", a.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	<-scheduler.Stop().Done()
	a.notify.Wait()
	return err
}

func migrate(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := repository.Migrate(c.Context, a.db); err != nil {
		return err
	}
	a.logger.Info("schema up to date")
	return nil
}

func createHost(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	host, err := a.auth.CreateHost(c.Context, c.String("email"), c.String("name"), c.String("phone"), c.String("password"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, host.ID)
	return nil
}

func createMenu(c *cli.Context) error {
	policy, err := availability.ParsePolicy(c.String("method"))
	if err != nil {
		return err
	}
	if c.Int("duration") <= 0 {
		return errors.New("duration must be positive")
	}

	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	mt := &db.MeetingType{
		ID:              uuid.NewString(),
		WorkspaceID:     c.String("workspace"),
		Title:           c.String("title"),
		Slug:            c.String("slug"),
		DurationMinutes: c.Int("duration"),
		BookingMethod:   string(policy),
		HostIDs:         c.StringSlice("host"),
	}
	if err := a.menus.Create(c.Context, mt); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, mt.ID)
	return nil
}

func printSlots(c *cli.Context) error {
	a, err := newApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.availability.Slots(c.Context, entities.SlotsQuery{
		HostID:          c.String("host"),
		OrgID:           c.String("org"),
		MenuSlug:        c.String("menu"),
		Date:            c.String("date"),
		DurationMinutes: c.Int("duration"),
		Method:          c.String("method"),
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
