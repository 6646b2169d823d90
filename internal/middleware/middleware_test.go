package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-enrollment/internal/logging"
	"github.com/goliatone/go-enrollment/internal/metrics"
)

func newLogger(t *testing.T) (*logrus.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Output: &buf})
	require.NoError(t, err)
	return logger, &buf
}

func TestLogging_AssignsRequestID(t *testing.T) {
	logger, buf := newLogger(t)

	var seen string
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/enroll/seeker-child-care/zip", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"request_id":"`+seen+`"`)
}

func TestLogging_KeepsIncomingRequestID(t *testing.T) {
	logger, _ := newLogger(t)
	h := Logging(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	m := metrics.New(false)
	router := mux.NewRouter()
	router.Use(Metrics(m))
	router.HandleFunc("/enroll/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/enroll/seeker-pet-care", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `enrollment_http_requests_total{method="GET",path="/enroll/{slug}",status="303"} 1`)
}

func TestRecover_UsesFallbackHandler(t *testing.T) {
	logger, buf := newLogger(t)
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("sorry"))
	})
	h := Recover(logger, fallback)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "sorry", rec.Body.String())
	assert.Contains(t, buf.String(), "handler panicked")
}

func TestRecover_PlainError(t *testing.T) {
	logger, _ := newLogger(t)
	h := Recover(logger, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMapLimiter(t *testing.T) {
	assert.Nil(t, NewMapLimiter(0, 1, 0))
	var nilLimiter *MapLimiter
	assert.True(t, nilLimiter.Allow("k", time.Now()))

	l := NewMapLimiter(1, 2, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	assert.True(t, l.Allow("a", now))
	assert.True(t, l.Allow("a", now))
	assert.False(t, l.Allow("a", now))
	assert.True(t, l.Allow("b", now))
	assert.True(t, l.Allow("a", now.Add(time.Second)))
	assert.True(t, l.Allow(" ", now))
	assert.Equal(t, 2, l.Len())
}

func TestMapLimiter_EvictsIdleKeys(t *testing.T) {
	l := NewMapLimiter(100, 100, time.Minute)
	start := time.Unix(1_700_000_000, 0)
	l.Allow("idle", start)

	later := start.Add(time.Hour)
	for i := 0; i < 511; i++ {
		l.Allow("busy", later)
	}
	assert.Equal(t, 1, l.Len())
}

func TestRateLimit_OnlyThrottlesUnsafeMethods(t *testing.T) {
	m := metrics.New(false)
	limiter := NewMapLimiter(0.001, 1, time.Minute)
	h := RateLimit(limiter, CookieOrIP("enroll_sid"), func(*http.Request) { m.RecordRateLimited() })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/enroll/seeker-child-care/zip", nil)
		req.AddCookie(&http.Cookie{Name: "enroll_sid", Value: "s1"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, post())
	assert.Equal(t, http.StatusTooManyRequests, post())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/enroll/seeker-child-care/zip", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	out := httptest.NewRecorder()
	m.Handler().ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, out.Body.String(), "enrollment_http_rate_limited_total 1")
}

func TestCookieOrIP(t *testing.T) {
	key := CookieOrIP("enroll_sid")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "ip:10.0.0.1", key(req))

	req.AddCookie(&http.Cookie{Name: "enroll_sid", Value: "abc"})
	assert.Equal(t, "sid:abc", key(req))
}
