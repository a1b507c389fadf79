package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fintrack-server/src/config"
	"fintrack-server/src/db"
	"fintrack-server/src/handlers"
	"fintrack-server/src/middleware"
)

func NewRouter(dbh db.DB, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", handlers.Register(dbh))
		r.Post("/auth/login", handlers.Login(dbh, cfg))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(cfg.JWTSecret)).Group(func(r chi.Router) {
			// Profile
			r.Get("/auth/profile", handlers.GetProfile(dbh))
			r.Post("/auth/change-password", handlers.ChangePassword(dbh))
			r.Delete("/auth/profile", handlers.DeleteProfile(dbh))

			// Budgets
			r.Post("/budget", handlers.CreateBudget(dbh))
			r.Get("/budget", handlers.GetAllBudgets(dbh))
			r.Get("/budget/{budget_id}", handlers.GetBudgetByID(dbh))
			r.Put("/budget/{budget_id}", handlers.UpdateBudget(dbh))
			r.Delete("/budget/{budget_id}", handlers.DeleteBudget(dbh))
			r.Get("/budget/{budget_id}/total-expenses", handlers.GetTotalExpenses(dbh))
			r.Get("/budget/{budget_id}/balance", handlers.GetBalance(dbh))

			// Expenses
			r.Post("/expenses", handlers.CreateExpense(dbh))
			r.Get("/expenses", handlers.GetAllExpenses(dbh))
			r.Get("/expenses/summary/monthly", handlers.GetMonthlySummary(dbh))
			r.Get("/expenses/{expense_id}", handlers.GetExpenseByID(dbh))
			r.Put("/expenses/{expense_id}", handlers.UpdateExpense(dbh))
			r.Delete("/expenses/{expense_id}", handlers.DeleteExpense(dbh))
		})
	})

	return r
}
