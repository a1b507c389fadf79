package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"fintrack-server/src/auth"
	"fintrack-server/src/config"
	"fintrack-server/src/db"
	dbsql "fintrack-server/src/db/sql"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
	"fintrack-server/src/util"
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func Register(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode register request body: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		req.Email = strings.TrimSpace(req.Email)
		req.FirstName = strings.TrimSpace(req.FirstName)
		req.LastName = strings.TrimSpace(req.LastName)

		if req.FirstName == "" || req.LastName == "" {
			writeError(w, http.StatusBadRequest, "firstName and lastName are required.")
			return
		}
		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during registration - Email: %s", req.Email)
			writeError(w, http.StatusBadRequest, "Invalid email format.")
			return
		}
		if !util.ValidatePassword(req.Password) {
			log.Printf("ERROR: Password validation failed during registration - Email: %s", req.Email)
			writeError(w, http.StatusBadRequest, "Password must be at least 8 characters.")
			return
		}

		// Pre-check gives the friendly message; the unique constraint still
		// backstops a concurrent duplicate.
		if _, err := dbsql.GetUserByEmail(r.Context(), dbh, req.Email); err == nil {
			log.Printf("ERROR: Registration failed - email already in use - Email: %s", req.Email)
			writeError(w, http.StatusBadRequest, "Email already in use")
			return
		} else if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("ERROR: Failed to check existing email %s: %v", req.Email, err)
			writeError(w, http.StatusInternalServerError, "Error registering user.")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash password for %s: %v", req.Email, err)
			writeError(w, http.StatusInternalServerError, "Error registering user.")
			return
		}

		user, err := dbsql.CreateUser(r.Context(), dbh, req, string(hashedPassword))
		if err != nil {
			if isUniqueViolation(err) {
				log.Printf("ERROR: Registration failed - email already in use - Email: %s", req.Email)
				writeError(w, http.StatusBadRequest, "Email already in use")
				return
			}
			log.Printf("ERROR: Failed to create user %s: %v", req.Email, err)
			writeError(w, http.StatusInternalServerError, "Error registering user.")
			return
		}

		log.Printf("INFO: Successful registration - Email: %s, ID: %s", user.Email, user.ID)
		writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
	}
}

func Login(dbh db.DB, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode login request body: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		user, err := dbsql.GetUserByEmail(r.Context(), dbh, strings.TrimSpace(req.Email))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				log.Printf("ERROR: Login attempt for unknown email %s", req.Email)
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			log.Printf("ERROR: Failed to look up user %s: %v", req.Email, err)
			writeError(w, http.StatusInternalServerError, "Error logging in")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
			log.Printf("ERROR: Invalid password attempt for %s from IP %s", req.Email, r.RemoteAddr)
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}

		token, err := auth.IssueToken(user.ID, cfg.JWTSecret, auth.TokenTTL)
		if err != nil {
			log.Printf("ERROR: Failed to generate token for user %s: %v", user.ID, err)
			writeError(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		log.Printf("INFO: Successful login - Email: %s, ID: %s", user.Email, user.ID)
		writeJSON(w, http.StatusOK, models.LoginResponse{
			Token: token,
			User: models.LoginUserDTO{
				ID:        user.ID,
				Email:     user.Email,
				FirstName: user.FirstName,
				LastName:  user.LastName,
			},
		})
	}
}

func GetProfile(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		user, err := dbsql.GetUserByID(r.Context(), dbh, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "User not found.")
				return
			}
			log.Printf("ERROR: Failed to get profile - user_id: %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error fetching profile.")
			return
		}

		// PasswordHash carries json:"-", so the hash never leaves the server
		writeJSON(w, http.StatusOK, user)
	}
}

func ChangePassword(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var req models.ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode change password request body: %v", err)
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		user, err := dbsql.GetUserByID(r.Context(), dbh, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "User not found.")
				return
			}
			log.Printf("ERROR: Failed to get user for password change - user_id: %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error changing password.")
			return
		}

		if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.CurrentPassword)); err != nil {
			log.Printf("ERROR: Invalid current password attempt for user %s", userID)
			writeError(w, http.StatusUnauthorized, "Current password is incorrect.")
			return
		}

		if !util.ValidatePassword(req.NewPassword) {
			writeError(w, http.StatusBadRequest, "Password must be at least 8 characters.")
			return
		}

		// Re-hash only here, where the plaintext actually changed
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: Failed to hash new password for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error changing password.")
			return
		}

		if err := dbsql.UpdateUserPassword(r.Context(), dbh, userID, string(hashedPassword)); err != nil {
			log.Printf("ERROR: Failed to update password - user_id: %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error changing password.")
			return
		}

		log.Printf("INFO: Password changed - User: %s", userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
	}
}

func DeleteProfile(dbh db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		err := dbsql.DeleteUser(r.Context(), dbh, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			log.Printf("ERROR: Failed to delete user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "Error deleting account")
			return
		}

		log.Printf("INFO: User %s deleted", userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "User account deleted successfully"})
	}
}
