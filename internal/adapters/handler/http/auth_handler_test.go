package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterEndpoint(t *testing.T) {
	t.Run("Success: 201 Created", func(t *testing.T) {
		env := newTestEnv(t, nil)

		body := `{"username": "giulia_dev", "email": "giulia@example.com", "password": "supersecret99"}`
		req, _ := http.NewRequest("POST", "/api/v1/auth/register", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"giulia_dev"`)
		assert.Contains(t, w.Body.String(), `"email":"giulia@example.com"`)
		assert.NotContains(t, w.Body.String(), "supersecret99")
	})

	t.Run("Fail: 409 Duplicate Email", func(t *testing.T) {
		env := newTestEnv(t, nil)

		body := `{"username": "first_user", "email": "dupe@example.com", "password": "supersecret99"}`
		req, _ := http.NewRequest("POST", "/api/v1/auth/register", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)

		body2 := `{"username": "second_user", "email": "dupe@example.com", "password": "supersecret99"}`
		req2, _ := http.NewRequest("POST", "/api/v1/auth/register", bytes.NewBufferString(body2))
		req2.Header.Set("Content-Type", "application/json")
		w2 := httptest.NewRecorder()
		env.router.ServeHTTP(w2, req2)

		assert.Equal(t, http.StatusConflict, w2.Code)
	})

	t.Run("Fail: 400 Validation", func(t *testing.T) {
		env := newTestEnv(t, nil)

		cases := []string{
			`{"username": "x", "email": "valid@example.com", "password": "supersecret99"}`,
			`{"username": "valid_name", "email": "not-an-email", "password": "supersecret99"}`,
			`{"username": "valid_name", "email": "valid@example.com", "password": "short"}`,
			`{not json`,
		}

		for _, body := range cases {
			req, _ := http.NewRequest("POST", "/api/v1/auth/register", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, "Should reject body: %s", body)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	register := func(env *testEnv, t *testing.T) {
		body := `{"username": "login_user", "email": "login@example.com", "password": "supersecret99"}`
		req, _ := http.NewRequest("POST", "/api/v1/auth/register", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("Success: Returns Token", func(t *testing.T) {
		env := newTestEnv(t, nil)
		register(env, t)

		body := `{"email": "login@example.com", "password": "supersecret99"}`
		req, _ := http.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "login_user", resp.User.Username)
	})

	t.Run("Fail: 401 Wrong Password", func(t *testing.T) {
		env := newTestEnv(t, nil)
		register(env, t)

		body := `{"email": "login@example.com", "password": "wrongpassword"}`
		req, _ := http.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: 401 Unknown Email", func(t *testing.T) {
		env := newTestEnv(t, nil)

		body := `{"email": "ghost@example.com", "password": "supersecret99"}`
		req, _ := http.NewRequest("POST", "/api/v1/auth/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
