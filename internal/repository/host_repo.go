package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"smartscheduler/internal/db"
)

type HostRepository interface {
	GetByEmail(ctx context.Context, email string) (*db.Host, error)
	GetByID(ctx context.Context, id string) (*db.Host, error)
	Create(ctx context.Context, email, name, phone, password string) (*db.Host, error)
}

type hostRepository struct {
	db *sql.DB
}

func NewHostRepository(db *sql.DB) HostRepository {
	return &hostRepository{db: db}
}

func (r *hostRepository) GetByEmail(ctx context.Context, email string) (*db.Host, error) {
	return r.getOne(ctx, "SELECT id, email, name, phone, password_hash, created_at FROM hosts WHERE email = $1", email)
}

func (r *hostRepository) GetByID(ctx context.Context, id string) (*db.Host, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return r.getOne(ctx, "SELECT id, email, name, phone, password_hash, created_at FROM hosts WHERE id = $1", id)
}

func (r *hostRepository) getOne(ctx context.Context, query, arg string) (*db.Host, error) {
	var h db.Host
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&h.ID, &h.Email, &h.Name, &h.Phone, &h.PasswordHash, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (r *hostRepository) Create(ctx context.Context, email, name, phone, password string) (*db.Host, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	h := &db.Host{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hashedPassword),
	}
	err = r.db.QueryRowContext(ctx,
		"INSERT INTO hosts (id, email, name, phone, password_hash) VALUES ($1, $2, $3, $4, $5) RETURNING created_at",
		h.ID, h.Email, h.Name, h.Phone, h.PasswordHash,
	).Scan(&h.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting host: %w", err)
	}
	return h, nil
}
