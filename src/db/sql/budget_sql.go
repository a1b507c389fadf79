package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"fintrack-server/src/db"
	"fintrack-server/src/models"
)

func CreateBudget(ctx context.Context, dbh db.DB, budget *models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, name, amount, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, amount, start_date, end_date, created_at, updated_at
	`
	var b models.Budget
	err := dbh.QueryRow(ctx, query, budget.UserID, budget.Name, budget.Amount, budget.StartDate, budget.EndDate).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func GetBudgetByID(ctx context.Context, dbh db.DB, userID, budgetID string) (*models.Budget, error) {
	query := `
		SELECT id, user_id, name, amount, start_date, end_date, created_at, updated_at
		FROM budgets WHERE id = $1 AND user_id = $2
	`
	var b models.Budget
	err := dbh.QueryRow(ctx, query, budgetID, userID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func GetAllBudgetsForUser(ctx context.Context, dbh db.DB, userID string) ([]models.Budget, error) {
	query := `
		SELECT id, user_id, name, amount, start_date, end_date, created_at, updated_at
		FROM budgets WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := dbh.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func UpdateBudget(ctx context.Context, dbh db.DB, budget *models.Budget) (*models.Budget, error) {
	query := `
		UPDATE budgets
		SET name = $1, amount = $2, start_date = $3, end_date = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING id, user_id, name, amount, start_date, end_date, created_at, updated_at
	`
	var b models.Budget
	err := dbh.QueryRow(ctx, query, budget.Name, budget.Amount, budget.StartDate, budget.EndDate, budget.ID, budget.UserID).
		Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func DeleteBudget(ctx context.Context, dbh db.DB, userID, budgetID string) error {
	query := `DELETE FROM budgets WHERE id = $1 AND user_id = $2`
	cmd, err := dbh.Exec(ctx, query, budgetID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
