package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zenbuy/backend/internal/coupon"
	"github.com/zenbuy/backend/internal/handler"
	"github.com/zenbuy/backend/internal/metrics"
	"github.com/zenbuy/backend/internal/order"
	"github.com/zenbuy/backend/internal/product"
	"github.com/zenbuy/backend/internal/user"
)

// NewRouter wires repositories, services, and handlers onto a chi router.
func NewRouter(dbPool *pgxpool.Pool, checkoutMetrics *metrics.CheckoutMetrics) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	userRepo := user.NewRepository(dbPool)
	productRepo := product.NewRepository(dbPool)
	orderRepo := order.NewRepository(dbPool)
	couponRepo := coupon.NewRepository(dbPool)

	orderSvc := order.NewService(orderRepo, userRepo)
	couponValidator := coupon.NewValidator(couponRepo)

	orderHandler := handler.NewOrderHandler(orderSvc, checkoutMetrics)
	couponHandler := handler.NewCouponHandler(couponValidator, couponRepo, checkoutMetrics)
	productHandler := handler.NewProductHandler(productRepo)

	orderHandler.RegisterRoutes(r)
	couponHandler.RegisterRoutes(r)
	productHandler.RegisterRoutes(r)

	return r
}
