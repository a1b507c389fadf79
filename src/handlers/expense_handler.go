package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fintrack-server/src/db"
	dbsql "fintrack-server/src/db/sql"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
)

func CreateExpense(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req models.ExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create expense request body for user %s: %v", userID, err)
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		budgetID, err := uuid.Parse(req.BudgetID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "budgetId must be a valid id")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if req.Amount <= 0 {
			writeError(w, http.StatusBadRequest, "amount must be greater than zero")
			return
		}

		// Date defaults to creation time when the client leaves it out
		date := time.Now()
		if req.Date != nil {
			date = *req.Date
		}

		expense := &models.Expense{
			UserID:   userID,
			BudgetID: budgetID.String(),
			Name:     req.Name,
			Amount:   req.Amount,
			Date:     date,
		}
		created, err := dbsql.CreateExpense(r.Context(), dbh, expense)
		if err != nil {
			log.Printf("ERROR: Failed to create expense for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error creating expense")
			return
		}

		log.Printf("INFO: Created expense %s for user %s, budget %s", created.ID, userID, created.BudgetID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetAllExpenses(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		expenses, err := dbsql.GetAllExpensesForUser(r.Context(), dbh, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get expenses for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error fetching expenses")
			return
		}
		if expenses == nil {
			expenses = []models.Expense{}
		}
		writeJSON(w, http.StatusOK, expenses)
	}
}

func GetExpenseByID(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		expenseID, ok := parseIDParam(w, r, "expense_id")
		if !ok {
			return
		}

		expense, err := dbsql.GetExpenseByID(r.Context(), dbh, userID, expenseID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "Expense not found")
				return
			}
			log.Printf("ERROR: Failed to get expense %s for user %s: %v", expenseID, userID, err)
			writeError(w, http.StatusInternalServerError, "Error fetching expense")
			return
		}
		writeJSON(w, http.StatusOK, expense)
	}
}

func UpdateExpense(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		expenseID, ok := parseIDParam(w, r, "expense_id")
		if !ok {
			return
		}

		var req models.ExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update expense request body for user %s: %v", userID, err)
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if req.Amount <= 0 {
			writeError(w, http.StatusBadRequest, "amount must be greater than zero")
			return
		}

		expense := &models.Expense{
			ID:     expenseID,
			UserID: userID,
			Name:   req.Name,
			Amount: req.Amount,
		}
		// nil date keeps the stored one
		updated, err := dbsql.UpdateExpense(r.Context(), dbh, expense, req.Date)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "Expense not found")
				return
			}
			log.Printf("ERROR: Failed to update expense %s for user %s: %v", expenseID, userID, err)
			writeError(w, http.StatusInternalServerError, "Error updating expense")
			return
		}

		log.Printf("INFO: Updated expense %s for user %s", updated.ID, userID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteExpense(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		expenseID, ok := parseIDParam(w, r, "expense_id")
		if !ok {
			return
		}

		err := dbsql.DeleteExpense(r.Context(), dbh, userID, expenseID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "Expense not found")
				return
			}
			log.Printf("ERROR: Failed to delete expense %s for user %s: %v", expenseID, userID, err)
			writeError(w, http.StatusInternalServerError, "Error deleting expense")
			return
		}

		log.Printf("INFO: Deleted expense %s for user %s", expenseID, userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
	}
}

func GetMonthlySummary(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		summary, err := dbsql.GetMonthlySummary(r.Context(), dbh, userID)
		if err != nil {
			log.Printf("ERROR: Failed to build monthly summary for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error generating monthly summary")
			return
		}
		if summary == nil {
			summary = []models.MonthlySummaryEntry{}
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
