package models

import "time"

type Expense struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BudgetID  string    `json:"budgetId"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

type ExpenseRequest struct {
	BudgetID string     `json:"budgetId"`
	Name     string     `json:"name"`
	Amount   float64    `json:"amount"`
	Date     *time.Time `json:"date"` // nil means "now"
}
