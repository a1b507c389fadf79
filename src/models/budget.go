package models

import "time"

type Budget struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BudgetRequest struct {
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// BalanceResponse reports how much of a budget remains. RemainingBalance goes
// negative when a budget is overspent.
type BalanceResponse struct {
	RemainingBalance float64 `json:"remainingBalance"`
	TotalSpent       float64 `json:"totalSpent"`
}
