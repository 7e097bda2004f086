package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	adminhandlers "github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http/admin"
	authhandlers "github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http/auth"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http/authctx"
	createorder "github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http/create_order"
	listorders "github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http/list_orders"
	producthandlers "github.com/JuanAndresGH-hub/dulces-makertplace/internal/transport/http/products"

	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/models/user"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/adminsvc"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/authsvc"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/catalogsvc"
	"github.com/JuanAndresGH-hub/dulces-makertplace/internal/service/services/ordersvc"
	"github.com/JuanAndresGH-hub/dulces-makertplace/pkg/http/middleware/trace"
	"github.com/JuanAndresGH-hub/dulces-makertplace/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

// HTTPTransport wires the services to the chi router.
type HTTPTransport struct {
	server     *http.Server
	router     *chi.Mux
	authSvc    *authsvc.AuthService
	catalogSvc *catalogsvc.CatalogService
	orderSvc   *ordersvc.OrderService
	adminSvc   *adminsvc.AdminService
}

func NewHTTPTransport(
	authSvc *authsvc.AuthService,
	catalogSvc *catalogsvc.CatalogService,
	orderSvc *ordersvc.OrderService,
	adminSvc *adminsvc.AdminService,
) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:     server,
		router:     router,
		authSvc:    authSvc,
		catalogSvc: catalogSvc,
		orderSvc:   orderSvc,
		adminSvc:   adminSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/__health", health)

	h.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
			authhandlers.Register(w, r, h.authSvc)
		})
		r.Post("/register-admin", func(w http.ResponseWriter, r *http.Request) {
			authhandlers.RegisterAdmin(w, r, h.authSvc)
		})
		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			authhandlers.Login(w, r, h.authSvc)
		})
		r.With(h.authenticate).Get("/me", authhandlers.Me)
	})

	h.router.Route("/products", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			producthandlers.ListProducts(w, r, h.catalogSvc)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			producthandlers.GetProduct(w, r, h.catalogSvc)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate, requireRole(user.RoleAdmin))
			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				producthandlers.CreateProduct(w, r, h.catalogSvc)
			})
			r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
				producthandlers.UpdateProduct(w, r, h.catalogSvc)
			})
			r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
				producthandlers.DeleteProduct(w, r, h.catalogSvc)
			})
		})
	})

	h.router.Route("/orders", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			createorder.CreateOrder(w, r, h.orderSvc)
		})
		r.Get("/my", func(w http.ResponseWriter, r *http.Request) {
			listorders.ListMyOrders(w, r, h.orderSvc)
		})
	})

	h.router.Route("/admin", func(r chi.Router) {
		r.Use(h.authenticate, requireRole(user.RoleAdmin))
		r.Get("/overview", func(w http.ResponseWriter, r *http.Request) {
			adminhandlers.Overview(w, r, h.adminSvc)
		})
		r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
			adminhandlers.ListUsers(w, r, h.adminSvc)
		})
	})
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("Error sending health response", "error", err)
	}
}

// authenticate resolves the bearer token to an identity and stores it in the
// request context. The handlers downstream trust that identity as given.
func (h *HTTPTransport) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)

			return
		}

		identity, err := h.authSvc.ResolveIdentity(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(authctx.WithIdentity(r.Context(), identity)))
	})
}

func requireRole(role user.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := authctx.Identity(r.Context())
			if identity == nil || identity.Role != role {
				http.Error(w, "insufficient permissions", http.StatusForbidden)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
