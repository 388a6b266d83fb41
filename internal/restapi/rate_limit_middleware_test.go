package restapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, target, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware_BlocksRequestsOverLimit(t *testing.T) {
	rl := NewRateLimitMiddleware(3, time.Second)
	defer rl.Stop()
	limited := rl.Handler(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(limited, "/api/departures?key=board", "")
		assert.Equal(t, http.StatusOK, rec.Code, "Request %d should be allowed", i+1)
	}

	rec := doRequest(limited, "/api/departures?key=board", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, rec.Body.String(), `"code":429`)
}

func TestRateLimitMiddleware_PerClientLimiting(t *testing.T) {
	rl := NewRateLimitMiddleware(2, time.Second)
	defer rl.Stop()
	limited := rl.Handler(okHandler())

	for i := 0; i < 2; i++ {
		doRequest(limited, "/api/departures?key=one", "")
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(limited, "/api/departures?key=one", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(limited, "/api/departures?key=two", "").Code)

	// without a key clients are told apart by address
	for i := 0; i < 2; i++ {
		doRequest(limited, "/api/departures", "10.0.0.1:5000")
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(limited, "/api/departures", "10.0.0.1:6000").Code)
	assert.Equal(t, http.StatusOK, doRequest(limited, "/api/departures", "10.0.0.2:5000").Code)
}

func TestRateLimitMiddleware_Refills(t *testing.T) {
	rl := NewRateLimitMiddleware(10, 100*time.Millisecond)
	defer rl.Stop()
	limited := rl.Handler(okHandler())

	for i := 0; i < 10; i++ {
		doRequest(limited, "/api/weather?key=refill", "")
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(limited, "/api/weather?key=refill", "").Code)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, http.StatusOK, doRequest(limited, "/api/weather?key=refill", "").Code)
}

func TestRateLimitMiddleware_DisabledWhenZero(t *testing.T) {
	rl := NewRateLimitMiddleware(0, time.Second)
	defer rl.Stop()
	limited := rl.Handler(okHandler())

	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, doRequest(limited, "/api/departures", "").Code)
	}
}

func TestRateLimitMiddleware_Concurrent(t *testing.T) {
	rl := NewRateLimitMiddleware(5, time.Minute)
	defer rl.Stop()
	limited := rl.Handler(okHandler())

	var mu sync.Mutex
	allowed := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if doRequest(limited, "/api/departures?key=shared", "").Code == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, allowed)
}

func TestRateLimitMiddleware_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimitMiddleware(1, time.Second)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimitingThroughRoutes(t *testing.T) {
	api := createTestApi(t, &fakeDepartures{}, &fakeWeather{}, withRateLimit(3))
	handler := api.Routes()

	statuses := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		statuses = append(statuses, doRequest(handler, fmt.Sprintf("/api/current-time?i=%d", i), "").Code)
	}

	assert.Equal(t, []int{200, 200, 200, 429, 429}, statuses)
}
