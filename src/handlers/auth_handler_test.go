package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack-server/src/auth"
	"fintrack-server/src/config"
	"fintrack-server/src/middleware"
	"fintrack-server/src/models"
)

var testCfg = config.Config{JWTSecret: []byte("handler-test-secret")}

// bcryptHashOf matches any stored value that bcrypt-verifies against the
// expected plaintext, proving the handler never persists the plaintext.
type bcryptHashOf struct {
	plaintext string
}

func (m bcryptHashOf) Match(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s), []byte(m.plaintext)) == nil
}

// authedJSONRequest is authedRequest with a JSON body attached.
func authedJSONRequest(method, target, userID, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func userRows(passwordHash string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "first_name", "last_name", "email", "password_hash", "created_at", "updated_at"}).
		AddRow(testUserID, "Jane", "Doe", "jane@example.com", []byte(passwordHash), now, now)
}

func TestRegister(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Jane", "Doe", "jane@example.com", bcryptHashOf{plaintext: "Sup3rSecret!"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(testUserID, time.Now(), time.Now()))

	body := `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"Sup3rSecret!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Register(mock).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "User registered successfully")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnRows(userRows("whatever"))

	body := `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"Sup3rSecret!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Register(mock).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already in use")
}

func TestRegister_UniqueViolationOnInsert(t *testing.T) {
	mock := newMock(t)

	// Concurrent registration slips past the pre-check; the constraint catches it
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Jane", "Doe", "jane@example.com", bcryptHashOf{plaintext: "Sup3rSecret!"}).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	body := `{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"Sup3rSecret!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Register(mock).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already in use")
}

func TestRegister_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad email", `{"firstName":"J","lastName":"D","email":"nope","password":"Sup3rSecret!"}`},
		{"short password", `{"firstName":"J","lastName":"D","email":"j@example.com","password":"short"}`},
		{"missing names", `{"email":"j@example.com","password":"Sup3rSecret!"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := newMock(t)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			Register(mock).ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	mock := newMock(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret!"), bcrypt.DefaultCost)
	require.NoError(t, err)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnRows(userRows(string(hash)))

	body := `{"email":"jane@example.com","password":"Sup3rSecret!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Login(mock, testCfg).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testUserID, resp.User.ID)
	assert.Equal(t, "jane@example.com", resp.User.Email)

	// The issued token resolves back to the same user
	gotID, err := auth.UserIDFromToken(resp.Token, testCfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, testUserID, gotID)
}

func TestLogin_WrongPassword(t *testing.T) {
	mock := newMock(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret!"), bcrypt.DefaultCost)
	require.NoError(t, err)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnRows(userRows(string(hash)))

	body := `{"email":"jane@example.com","password":"WrongSecret!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Login(mock, testCfg).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestLogin_UnknownEmail(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	body := `{"email":"ghost@example.com","password":"Sup3rSecret!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Login(mock, testCfg).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found")
}

func TestGetProfile_OmitsPasswordHash(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(testUserID).
		WillReturnRows(userRows("some-hash"))

	req := authedRequest(http.MethodGet, "/api/auth/profile", testUserID, nil)
	rec := httptest.NewRecorder()
	GetProfile(mock).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "some-hash")
	assert.Contains(t, rec.Body.String(), `"email":"jane@example.com"`)
}

func TestGetProfile_LookupFailureIs500(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(testUserID).
		WillReturnError(errors.New("connection refused"))

	req := authedRequest(http.MethodGet, "/api/auth/profile", testUserID, nil)
	rec := httptest.NewRecorder()
	GetProfile(mock).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error fetching profile.")
}

func TestChangePassword_RehashesNewPlaintext(t *testing.T) {
	mock := newMock(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("OldSecret1!"), bcrypt.DefaultCost)
	require.NoError(t, err)
	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs(testUserID).
		WillReturnRows(userRows(string(hash)))
	mock.ExpectExec(`UPDATE users SET password_hash = \$1`).
		WithArgs(bcryptHashOf{plaintext: "NewSecret1!"}, testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	body := `{"currentPassword":"OldSecret1!","newPassword":"NewSecret1!"}`
	req := authedJSONRequest(http.MethodPost, "/api/auth/change-password", testUserID, body)
	rec := httptest.NewRecorder()
	ChangePassword(mock).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProfile(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	req := authedRequest(http.MethodDelete, "/api/auth/profile", testUserID, nil)
	rec := httptest.NewRecorder()
	DeleteProfile(mock).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User account deleted successfully")
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("correct horse")))
	assert.Error(t, bcrypt.CompareHashAndPassword(hash, []byte("wrong horse")))
}
