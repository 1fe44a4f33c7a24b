package api

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"minigram/constants"

	"golang.org/x/time/rate"
)

// Cors sets the CORS headers and answers preflight requests
func Cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// limit body to 50mb, uploads go through here too
			r.Body = http.MaxBytesReader(w, r.Body, 50*1024*1024)

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "*")
			w.Header().Set("Access-Control-Expose-Headers", "X-Session-Invalid, Retry-After")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE")

			if r.Method == "OPTIONS" {
				w.Write([]byte{})
				return
			}

			w.Header().Set("Content-Type", "application/json")

			next.ServeHTTP(w, r)
		})
	}
}

// Compression Middleware
type compressResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g *compressResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoding := r.Header.Get("Accept-Encoding")

		// Avoid compressing already compressed content
		contentType := w.Header().Get("Content-Type")
		if strings.Contains(contentType, "image") || strings.Contains(contentType, "video") || strings.Contains(contentType, "zip") {
			next.ServeHTTP(w, r)
			return
		}

		if strings.Contains(encoding, "gzip") {
			gz := gzip.NewWriter(w)
			defer gz.Close()

			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Vary", "Accept-Encoding")

			next.ServeHTTP(&compressResponseWriter{ResponseWriter: w, Writer: gz}, r)
			return
		}

		if strings.Contains(encoding, "deflate") {
			fl, _ := flate.NewWriter(w, flate.DefaultCompression)
			defer fl.Close()

			w.Header().Set("Content-Encoding", "deflate")
			w.Header().Set("Vary", "Accept-Encoding")

			next.ServeHTTP(&compressResponseWriter{ResponseWriter: w, Writer: fl}, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits write requests per client address. Reads are not limited.
type RateLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		burst:    burst,
		idle:     10 * time.Minute,
		visitors: map[string]*visitor{},
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Idle visitors are swept at most once per idle period
	if now.Sub(rl.lastSweep) >= rl.idle {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.idle {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[ip]
	if !ok || now.Sub(v.lastSeen) > rl.idle {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.allow(clientIP(r), time.Now()) {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(constants.TooManyRequests))
			return
		}

		next.ServeHTTP(w, r)
	})
}
