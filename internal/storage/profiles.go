package storage

import (
	"context"
	"fmt"

	"github.com/claude/ironlog/internal/models"
)

// GetProfile returns the user's profile. A user without a stored profile gets
// an empty one rather than an error.
func (db *DB) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	p := &models.Profile{UserID: userID}
	err := db.Pool.QueryRow(ctx,
		`SELECT gender, weight_kg FROM profiles WHERE user_id = $1`,
		userID).Scan(&p.Gender, &p.WeightKg)
	if err != nil && !isNoRows(err) {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// UpsertProfile stores the user's gender and body weight.
func (db *DB) UpsertProfile(ctx context.Context, p models.Profile) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO profiles (user_id, gender, weight_kg, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
			SET gender = EXCLUDED.gender, weight_kg = EXCLUDED.weight_kg, updated_at = NOW()
	`, p.UserID, p.Gender, p.WeightKg)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}
