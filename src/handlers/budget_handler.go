package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fintrack-server/src/db"
	dbsql "fintrack-server/src/db/sql"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
)

func validateBudgetRequest(req *models.BudgetRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if req.Amount <= 0 {
		return "amount must be greater than zero"
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return "startDate and endDate are required"
	}
	return ""
}

func CreateBudget(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req models.BudgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode create budget request body for user %s: %v", userID, err)
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		if msg := validateBudgetRequest(&req); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		budget := &models.Budget{
			UserID:    userID,
			Name:      req.Name,
			Amount:    req.Amount,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		}
		created, err := dbsql.CreateBudget(r.Context(), dbh, budget)
		if err != nil {
			log.Printf("ERROR: Failed to create budget for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error creating budget.")
			return
		}

		log.Printf("INFO: Created budget %s for user %s", created.ID, userID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func GetAllBudgets(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		budgets, err := dbsql.GetAllBudgetsForUser(r.Context(), dbh, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get budgets for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error fetching budgets.")
			return
		}
		if budgets == nil {
			budgets = []models.Budget{}
		}
		writeJSON(w, http.StatusOK, budgets)
	}
}

func GetBudgetByID(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		budgetID, ok := parseIDParam(w, r, "budget_id")
		if !ok {
			return
		}

		budget, err := dbsql.GetBudgetByID(r.Context(), dbh, userID, budgetID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "Budget not found.")
				return
			}
			log.Printf("ERROR: Failed to get budget %s for user %s: %v", budgetID, userID, err)
			writeError(w, http.StatusInternalServerError, "Error fetching budget.")
			return
		}
		writeJSON(w, http.StatusOK, budget)
	}
}

func UpdateBudget(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		budgetID, ok := parseIDParam(w, r, "budget_id")
		if !ok {
			return
		}

		var req models.BudgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode update budget request body for user %s: %v", userID, err)
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		if msg := validateBudgetRequest(&req); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		budget := &models.Budget{
			ID:        budgetID,
			UserID:    userID,
			Name:      req.Name,
			Amount:    req.Amount,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		}
		updated, err := dbsql.UpdateBudget(r.Context(), dbh, budget)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "Budget not found.")
				return
			}
			log.Printf("ERROR: Failed to update budget %s for user %s: %v", budgetID, userID, err)
			writeError(w, http.StatusInternalServerError, "Error updating budget")
			return
		}

		log.Printf("INFO: Updated budget %s for user %s", updated.ID, userID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteBudget(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		budgetID, ok := parseIDParam(w, r, "budget_id")
		if !ok {
			return
		}

		err := dbsql.DeleteBudget(r.Context(), dbh, userID, budgetID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "Budget not found.")
				return
			}
			log.Printf("ERROR: Failed to delete budget %s for user %s: %v", budgetID, userID, err)
			writeError(w, http.StatusInternalServerError, "Error deleting budget.")
			return
		}

		log.Printf("INFO: Deleted budget %s for user %s", budgetID, userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Budget deleted successfully"})
	}
}

func GetTotalExpenses(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		budgetID, ok := parseIDParam(w, r, "budget_id")
		if !ok {
			return
		}

		total, err := dbsql.GetTotalExpensesForBudget(r.Context(), dbh, userID, budgetID)
		if err != nil {
			log.Printf("ERROR: Failed to total expenses for budget %s, user %s: %v", budgetID, userID, err)
			writeError(w, http.StatusInternalServerError, "Error calculating total expenses")
			return
		}
		writeJSON(w, http.StatusOK, map[string]float64{"totalExpenses": total})
	}
}

func GetBalance(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		budgetID, ok := parseIDParam(w, r, "budget_id")
		if !ok {
			return
		}

		budget, err := dbsql.GetBudgetByID(r.Context(), dbh, userID, budgetID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "Budget not found.")
				return
			}
			log.Printf("ERROR: Failed to get budget %s for user %s: %v", budgetID, userID, err)
			writeError(w, http.StatusInternalServerError, "Error calculating balance")
			return
		}

		totalSpent, err := dbsql.GetTotalExpensesForBudget(r.Context(), dbh, userID, budgetID)
		if err != nil {
			log.Printf("ERROR: Failed to total expenses for budget %s, user %s: %v", budgetID, userID, err)
			writeError(w, http.StatusInternalServerError, "Error calculating balance")
			return
		}

		// Overspending is a valid state; the balance simply goes negative
		writeJSON(w, http.StatusOK, models.BalanceResponse{
			RemainingBalance: budget.Amount - totalSpent,
			TotalSpent:       totalSpent,
		})
	}
}

// parseIDParam pulls a uuid path parameter, writing a 400 if it is not one.
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Printf("ERROR: Invalid %s param: %s", name, raw)
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return "", false
	}
	return id.String(), true
}
