package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fintrack-server/src/db"
	"fintrack-server/src/models"
)

func CreateUser(ctx context.Context, dbh db.DB, req models.RegisterRequest, hashedPassword string) (*models.User, error) {
	query := `
		INSERT INTO users (first_name, last_name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: []byte(hashedPassword),
	}
	err := dbh.QueryRow(ctx, query, req.FirstName, req.LastName, req.Email, hashedPassword).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func GetUserByEmail(ctx context.Context, dbh db.DB, email string) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var user models.User
	err := dbh.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByID(ctx context.Context, dbh db.DB, userID string) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`
	var user models.User
	err := dbh.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUserPassword(ctx context.Context, dbh db.DB, userID, hashedPassword string) error {
	query := `
		UPDATE users SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`
	cmd, err := dbh.Exec(ctx, query, hashedPassword, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func DeleteUser(ctx context.Context, dbh db.DB, userID string) error {
	query := `DELETE FROM users WHERE id = $1`
	cmd, err := dbh.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
