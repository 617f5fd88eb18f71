package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"smartscheduler/internal/availability"
	"smartscheduler/internal/db"
	"smartscheduler/internal/entities"
)

var ErrForbidden = errors.New("host may not manage this schedule")

type ScheduleSettingsStore interface {
	GetSetting(ctx context.Context, scope availability.Scope) (*db.ScheduleSetting, error)
	SaveSchedule(ctx context.Context, scope availability.Scope, days availability.WeeklySchedule, offsetMinutes *int) error
}

type CredentialWriter interface {
	SaveCredential(ctx context.Context, cred availability.Credential) error
}

// WorkspaceMembership reports whether a host serves a workspace, that is
// whether it is listed on one of the workspace's meeting types.
type WorkspaceMembership interface {
	IsWorkspaceHost(ctx context.Context, workspaceID, hostID string) (bool, error)
}

// SettingsService reads and writes the host-managed configuration the engine
// consumes: weekly business hours and calendar credentials.
type SettingsService struct {
	schedules     ScheduleSettingsStore
	credentials   CredentialWriter
	members       WorkspaceMembership
	defaultOffset int
}

func NewSettingsService(schedules ScheduleSettingsStore, credentials CredentialWriter, members WorkspaceMembership, defaultOffset int) *SettingsService {
	return &SettingsService{schedules: schedules, credentials: credentials, members: members, defaultOffset: defaultOffset}
}

// ParseScope validates a scope from query parameters. A user scope may only
// name the authenticated host; an empty id means the host itself.
func ParseScope(hostID, kind, id string) (availability.Scope, error) {
	switch availability.ScopeKind(kind) {
	case "", availability.ScopeUser:
		if id == "" {
			id = hostID
		}
		if id != hostID {
			return availability.Scope{}, invalid("hosts can only manage their own schedule")
		}
		return availability.Scope{Kind: availability.ScopeUser, ID: id}, nil
	case availability.ScopeWorkspace:
		if id == "" {
			return availability.Scope{}, invalid("workspace id is required")
		}
		return availability.Scope{Kind: availability.ScopeWorkspace, ID: id}, nil
	}
	return availability.Scope{}, invalid("scope must be user or workspace")
}

// authorize allows a host its own user scope and the workspaces it serves.
func (s *SettingsService) authorize(ctx context.Context, hostID string, scope availability.Scope) error {
	switch scope.Kind {
	case availability.ScopeUser:
		if scope.ID == hostID {
			return nil
		}
	case availability.ScopeWorkspace:
		member, err := s.members.IsWorkspaceHost(ctx, scope.ID, hostID)
		if err != nil {
			return fmt.Errorf("checking workspace membership: %w", err)
		}
		if member {
			return nil
		}
	}
	return ErrForbidden
}

func (s *SettingsService) GetSchedule(ctx context.Context, hostID string, scope availability.Scope) (*entities.ScheduleSettingsResponse, error) {
	if err := s.authorize(ctx, hostID, scope); err != nil {
		return nil, err
	}
	resp := &entities.ScheduleSettingsResponse{
		Scope:         string(scope.Kind),
		ID:            scope.ID,
		BusinessHours: availability.WeeklySchedule{},
		UTCOffset:     availability.FormatOffset(s.defaultOffset),
	}
	setting, err := s.schedules.GetSetting(ctx, scope)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return resp, nil
	}
	if len(setting.BusinessHours) > 0 {
		if days, err := availability.ParseWeeklySchedule(setting.BusinessHours); err == nil {
			resp.BusinessHours = days
		}
	}
	if setting.UTCOffsetMinutes != nil {
		resp.UTCOffset = availability.FormatOffset(*setting.UTCOffsetMinutes)
	}
	return resp, nil
}

func (s *SettingsService) PutSchedule(ctx context.Context, hostID string, scope availability.Scope, req entities.ScheduleSettingsRequest) error {
	if err := s.authorize(ctx, hostID, scope); err != nil {
		return err
	}
	if req.BusinessHours == nil {
		req.BusinessHours = availability.WeeklySchedule{}
	}
	if err := req.BusinessHours.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	var offset *int
	if req.UTCOffset != nil {
		m, err := availability.ParseOffset(*req.UTCOffset)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		offset = &m
	}
	return s.schedules.SaveSchedule(ctx, scope, req.BusinessHours, offset)
}

func (s *SettingsService) PutCredentials(ctx context.Context, hostID string, req entities.CredentialsRequest) error {
	cred := availability.Credential{ParticipantID: hostID, Provider: availability.ProviderKind(req.Provider)}
	switch cred.Provider {
	case availability.ProviderGoogle:
		if req.AccessToken == "" && req.RefreshToken == "" {
			return invalid("google credentials need an access or refresh token")
		}
		cred.AccessToken = req.AccessToken
		cred.RefreshToken = req.RefreshToken
		if req.TokenExpiry != nil {
			cred.Expiry = req.TokenExpiry.UTC()
		} else if req.AccessToken != "" {
			cred.Expiry = time.Now().Add(time.Hour).UTC()
		}
	case availability.ProviderICS:
		u, err := url.Parse(req.FeedURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("feed_url must be an http(s) URL")
		}
		cred.FeedURL = req.FeedURL
	default:
		return invalid("provider must be google or ics")
	}
	return s.credentials.SaveCredential(ctx, cred)
}
