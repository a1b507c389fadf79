package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"fintrack-server/src/db"
	"fintrack-server/src/models"
)

func CreateExpense(ctx context.Context, dbh db.DB, expense *models.Expense) (*models.Expense, error) {
	query := `
		INSERT INTO expenses (user_id, budget_id, name, amount, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, budget_id, name, amount, date, created_at
	`
	var e models.Expense
	err := dbh.QueryRow(ctx, query, expense.UserID, expense.BudgetID, expense.Name, expense.Amount, expense.Date).
		Scan(&e.ID, &e.UserID, &e.BudgetID, &e.Name, &e.Amount, &e.Date, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func GetExpenseByID(ctx context.Context, dbh db.DB, userID, expenseID string) (*models.Expense, error) {
	query := `
		SELECT id, user_id, budget_id, name, amount, date, created_at
		FROM expenses WHERE id = $1 AND user_id = $2
	`
	var e models.Expense
	err := dbh.QueryRow(ctx, query, expenseID, userID).
		Scan(&e.ID, &e.UserID, &e.BudgetID, &e.Name, &e.Amount, &e.Date, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func GetAllExpensesForUser(ctx context.Context, dbh db.DB, userID string) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, budget_id, name, amount, date, created_at
		FROM expenses WHERE user_id = $1
		ORDER BY date DESC
	`
	rows, err := dbh.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.UserID, &e.BudgetID, &e.Name, &e.Amount, &e.Date, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// UpdateExpense replaces name and amount; a nil date keeps the stored one.
func UpdateExpense(ctx context.Context, dbh db.DB, expense *models.Expense, date *time.Time) (*models.Expense, error) {
	query := `
		UPDATE expenses
		SET name = $1, amount = $2, date = COALESCE($3, date)
		WHERE id = $4 AND user_id = $5
		RETURNING id, user_id, budget_id, name, amount, date, created_at
	`
	var e models.Expense
	err := dbh.QueryRow(ctx, query, expense.Name, expense.Amount, date, expense.ID, expense.UserID).
		Scan(&e.ID, &e.UserID, &e.BudgetID, &e.Name, &e.Amount, &e.Date, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func DeleteExpense(ctx context.Context, dbh db.DB, userID, expenseID string) error {
	query := `DELETE FROM expenses WHERE id = $1 AND user_id = $2`
	cmd, err := dbh.Exec(ctx, query, expenseID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetTotalExpensesForBudget sums the caller's expenses against one budget.
// A budget with no expenses totals 0, not an error.
func GetTotalExpensesForBudget(ctx context.Context, dbh db.DB, userID, budgetID string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses WHERE budget_id = $1 AND user_id = $2
	`
	var total float64
	err := dbh.QueryRow(ctx, query, budgetID, userID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// GetMonthlySummary groups the caller's expenses by calendar month,
// ascending by year then month. Months without expenses produce no row.
func GetMonthlySummary(ctx context.Context, dbh db.DB, userID string) ([]models.MonthlySummaryEntry, error) {
	query := `
		SELECT EXTRACT(YEAR FROM date)::int AS year,
		       EXTRACT(MONTH FROM date)::int AS month,
		       SUM(amount) AS total
		FROM expenses WHERE user_id = $1
		GROUP BY 1, 2
		ORDER BY 1, 2
	`
	rows, err := dbh.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []models.MonthlySummaryEntry
	for rows.Next() {
		var entry models.MonthlySummaryEntry
		if err := rows.Scan(&entry.ID.Year, &entry.ID.Month, &entry.Total); err != nil {
			return nil, err
		}
		summary = append(summary, entry)
	}
	return summary, rows.Err()
}
