package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return rdb
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Allow Requests under limit", func(t *testing.T) {
		rdb := setupTestRedis(t)

		limit := 5
		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, limit, 1*time.Minute))
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		for i := 1; i <= limit; i++ {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test", nil)
			req.Header.Set("X-Forwarded-For", "192.168.1.100")

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, fmt.Sprintf("%d", limit), w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, fmt.Sprintf("%d", limit-i), w.Header().Get("X-RateLimit-Remaining"))
		}
	})

	t.Run("Block Requests over limit", func(t *testing.T) {
		rdb := setupTestRedis(t)

		limit := 2
		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, limit, 1*time.Minute))
		router.GET("/test-block", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		ip := "192.168.1.101"

		for i := 0; i < limit; i++ {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test-block", nil)
			req.Header.Set("X-Forwarded-For", ip)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code, "Request %d should pass", i+1)
		}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test-block", nil)
		req.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code, "Request over limit should be blocked")
		assert.Contains(t, w.Body.String(), "Too many requests")
	})

	t.Run("Window Reset Restores Quota", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, 1, 1*time.Minute))
		router.GET("/test-reset", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		ip := "192.168.1.102"

		w1 := httptest.NewRecorder()
		req1, _ := http.NewRequest("GET", "/test-reset", nil)
		req1.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w1, req1)
		assert.Equal(t, http.StatusOK, w1.Code)

		w2 := httptest.NewRecorder()
		req2, _ := http.NewRequest("GET", "/test-reset", nil)
		req2.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w2, req2)
		assert.Equal(t, http.StatusTooManyRequests, w2.Code)

		mr.FastForward(2 * time.Minute)

		w3 := httptest.NewRecorder()
		req3, _ := http.NewRequest("GET", "/test-reset", nil)
		req3.Header.Set("X-Forwarded-For", ip)
		router.ServeHTTP(w3, req3)
		assert.Equal(t, http.StatusOK, w3.Code, "Quota should reset after the window expires")
	})

	t.Run("Fail Open (Redis Down)", func(t *testing.T) {
		badRdb := redis.NewClient(&redis.Options{
			Addr: "localhost:9999",
		})
		defer badRdb.Close()

		router := gin.New()
		router.Use(RateLimiterMiddleware(badRdb, 5, 1*time.Minute))
		router.GET("/test-fail-open", func(c *gin.Context) {
			c.String(http.StatusOK, "passed")
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test-fail-open", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "passed", w.Body.String())
	})
}
