package router

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/pingliu/service-rental-go/internal/auth"
	"github.com/pingliu/service-rental-go/internal/product"
	productrepo "github.com/pingliu/service-rental-go/internal/product/repo"
	"github.com/pingliu/service-rental-go/internal/upload"
	"github.com/pingliu/service-rental-go/internal/user"
	"github.com/pingliu/service-rental-go/internal/user/entity"
	userrepo "github.com/pingliu/service-rental-go/internal/user/repo"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level
// using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// CORSMiddleware allows cross-origin requests from the storefront. The
// policy is permissive, matching a frontend served from any origin.
func CORSMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts all HTTP handlers on the standard library mux.
// Protected routes go through the auth gate; catalog mutation additionally
// requires the admin role.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, tokens *auth.TokenService, uploads *upload.Storage) http.Handler {
	mux := http.NewServeMux()

	userSvc := user.NewService(userrepo.NewUserRepo(db), nil)
	userHandler := user.NewHandler(userSvc, tokens, uploads, logger)

	productSvc := product.NewService(productrepo.NewProductRepo(db))
	productHandler := product.NewHandler(productSvc, uploads, logger)

	gate := auth.Middleware(tokens, userSvc, logger)
	admin := func(h http.HandlerFunc) http.Handler {
		return gate(auth.RequireRole(entity.RoleAdmin)(h))
	}

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// auth routes
	mux.HandleFunc("POST /api/auth/register", userHandler.Register)
	mux.HandleFunc("POST /api/auth/login", userHandler.Login)
	mux.Handle("POST /api/auth/logout", gate(http.HandlerFunc(userHandler.Logout)))

	// user routes
	mux.Handle("GET /api/user/info", gate(http.HandlerFunc(userHandler.Info)))
	mux.Handle("PUT /api/user/info", gate(http.HandlerFunc(userHandler.UpdateInfo)))
	mux.Handle("POST /api/user/avatar", gate(http.HandlerFunc(userHandler.UploadAvatar)))

	// product routes; reads are public for storefront display
	mux.HandleFunc("GET /api/products", productHandler.ListActive)
	mux.Handle("GET /api/products/all", admin(productHandler.ListAll))
	mux.HandleFunc("GET /api/products/{id}", productHandler.Get)
	mux.Handle("POST /api/products", admin(productHandler.Create))
	mux.Handle("PUT /api/products/{id}", admin(productHandler.Update))
	mux.Handle("DELETE /api/products/{id}", admin(productHandler.Delete))
	mux.Handle("POST /api/products/{id}/upload", admin(productHandler.UploadImage))

	// uploaded avatars and carousel images
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads.Dir()))))

	handler := LoggingMiddleware(logger)(CORSMiddleware()(SecurityHeadersMiddleware()(mux)))
	return handler
}
