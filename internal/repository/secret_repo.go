package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartscheduler/internal/availability"
)

type SecretRepository struct {
	DB *sql.DB
}

func NewSecretRepository(db *sql.DB) *SecretRepository {
	return &SecretRepository{DB: db}
}

// Credential implements availability.CredentialStore.
func (r *SecretRepository) Credential(ctx context.Context, userID string) (*availability.Credential, error) {
	var (
		provider              string
		access, refresh, feed sql.NullString
		expiry                sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT provider, access_token, refresh_token, token_expiry, feed_url
		 FROM user_secrets WHERE user_id = $1`, userID,
	).Scan(&provider, &access, &refresh, &expiry, &feed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying credential for %s: %w", userID, err)
	}

	cred := &availability.Credential{
		ParticipantID: userID,
		Provider:      availability.ProviderKind(provider),
		AccessToken:   access.String,
		RefreshToken:  refresh.String,
		FeedURL:       feed.String,
	}
	if expiry.Valid {
		cred.Expiry = expiry.Time
	}
	return cred, nil
}

func (r *SecretRepository) SaveCredential(ctx context.Context, cred availability.Credential) error {
	nullable := func(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }
	expiry := sql.NullTime{Time: cred.Expiry, Valid: !cred.Expiry.IsZero()}

	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_secrets (user_id, provider, access_token, refresh_token, token_expiry, feed_url, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (user_id)
		 DO UPDATE SET provider = EXCLUDED.provider,
		               access_token = EXCLUDED.access_token,
		               refresh_token = EXCLUDED.refresh_token,
		               token_expiry = EXCLUDED.token_expiry,
		               feed_url = EXCLUDED.feed_url,
		               updated_at = NOW()`,
		cred.ParticipantID, string(cred.Provider),
		nullable(cred.AccessToken), nullable(cred.RefreshToken), expiry, nullable(cred.FeedURL),
	)
	if err != nil {
		return fmt.Errorf("error saving credential for %s: %w", cred.ParticipantID, err)
	}
	return nil
}
