/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dnote/replica/pkg/assert"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestLimit(t *testing.T) {
	limiter := NewRateLimiter(serverRateLimitPerSecond, serverRateLimitBurst)
	defer limiter.Stop()
	middleware := limiter.Limit(http.HandlerFunc(okHandler))

	blockedCount := 0
	for i := 0; i < serverRateLimitBurst+5; i++ {
		req := httptest.NewRequest("GET", "/v1/exercises", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if w.Code == http.StatusTooManyRequests {
			blockedCount++
		}
	}

	if blockedCount == 0 {
		t.Error("Expected some requests to be rate limited after burst")
	}
}

func TestLimit_DifferentIPs(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	defer limiter.Stop()
	middleware := limiter.Limit(http.HandlerFunc(okHandler))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/v1/exercises", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		middleware.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest("GET", "/v1/exercises", nil)
	req.RemoteAddr = "192.168.1.2:5678"
	w := httptest.NewRecorder()
	middleware.ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusOK, "request from a different IP should succeed")
}

func TestLookupIP(t *testing.T) {
	testCases := []struct {
		name       string
		remoteAddr string
		header     map[string]string
		expected   string
	}{
		{
			name:       "remote addr",
			remoteAddr: "10.0.0.1:4321",
			expected:   "10.0.0.1",
		},
		{
			name:       "real ip",
			remoteAddr: "10.0.0.1:4321",
			header:     map[string]string{"X-Real-IP": "172.16.0.2"},
			expected:   "172.16.0.2",
		},
		{
			name:       "forwarded for takes the first hop",
			remoteAddr: "10.0.0.1:4321",
			header: map[string]string{
				"X-Real-IP":       "172.16.0.2",
				"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
			},
			expected: "203.0.113.7",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}

			assert.Equal(t, lookupIP(req), tc.expected, "ip mismatch")
		})
	}
}

func TestEvict(t *testing.T) {
	limiter := NewRateLimiter(serverRateLimitPerSecond, serverRateLimitBurst)
	defer limiter.Stop()

	limiter.getVisitor("a")
	limiter.getVisitor("b")
	limiter.visitors["a"].lastSeen = time.Now().Add(-time.Hour)

	limiter.evict(time.Now().Add(-visitorTTL))

	_, hasA := limiter.visitors["a"]
	_, hasB := limiter.visitors["b"]
	assert.Equal(t, hasA, false, "idle visitor should be evicted")
	assert.Equal(t, hasB, true, "recent visitor should be kept")
}

func TestApplyLimit(t *testing.T) {
	h := ApplyLimit(okHandler, false)

	for i := 0; i < serverRateLimitBurst+5; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.168.9.9:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, w.Code, http.StatusOK, "unlimited handler should never be limited")
	}
}
