package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/watchit/watchit/pkg/models"
)

// ChildService manages child profiles, created lazily on first reference
// and otherwise mutated only through configuration.
type ChildService struct {
	db *sql.DB
}

// NewChildService creates a new ChildService.
func NewChildService(db *sql.DB) *ChildService {
	return &ChildService{db: db}
}

// GetOrCreate returns the child profile with the given ID, creating it
// with default strictness/age if it does not yet exist.
func (s *ChildService) GetOrCreate(ctx context.Context, childID string) (*models.ChildProfile, error) {
	if childID == "" {
		return nil, NewValidationError("child_id", "required")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	profile, err := s.Get(ctx, childID)
	if err == nil {
		return profile, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	profile = &models.ChildProfile{
		ID:         childID,
		Strictness: models.StrictnessStandard,
		Age:        12,
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO child_profile(id, name, os_user, timezone, strictness, age, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Name, profile.OSUser, profile.Timezone, string(profile.Strictness), profile.Age, time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("create child profile: %w", err)
	}
	return profile, nil
}

// Get fetches a child profile by ID.
func (s *ChildService) Get(ctx context.Context, childID string) (*models.ChildProfile, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, os_user, timezone, strictness, age FROM child_profile WHERE id = ?`, childID)

	var p models.ChildProfile
	var strictness string
	err := row.Scan(&p.ID, &p.Name, &p.OSUser, &p.Timezone, &strictness, &p.Age)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan child profile: %w", err)
	}
	p.Strictness = models.Strictness(strictness).Normalized()
	return &p, nil
}

// Update applies operator-configured changes to a child profile (name,
// timezone, strictness, age).
func (s *ChildService) Update(ctx context.Context, profile *models.ChildProfile) error {
	if profile.ID == "" {
		return NewValidationError("id", "required")
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE child_profile SET name = ?, os_user = ?, timezone = ?, strictness = ?, age = ? WHERE id = ?`,
		profile.Name, profile.OSUser, profile.Timezone, string(profile.Strictness.Normalized()), profile.Age, profile.ID)
	if err != nil {
		return fmt.Errorf("update child profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update child profile: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all known child profiles.
func (s *ChildService) List(ctx context.Context) ([]*models.ChildProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, os_user, timezone, strictness, age FROM child_profile`)
	if err != nil {
		return nil, fmt.Errorf("list child profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.ChildProfile
	for rows.Next() {
		var p models.ChildProfile
		var strictness string
		if err := rows.Scan(&p.ID, &p.Name, &p.OSUser, &p.Timezone, &strictness, &p.Age); err != nil {
			return nil, fmt.Errorf("scan child profile: %w", err)
		}
		p.Strictness = models.Strictness(strictness).Normalized()
		out = append(out, &p)
	}
	return out, rows.Err()
}
