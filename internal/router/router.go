package router

import (
	"database/sql"
	"net/http"
	"strings"

	mem "pet-adoption/internal/adapters/storage/memory"
	pg "pet-adoption/internal/adapters/storage/postgres"
	"pet-adoption/internal/domain/applications"
	"pet-adoption/internal/domain/events"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpresp"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/platform/ratelimiter"
	"pet-adoption/internal/ports/auth"

	_ "pet-adoption/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Tokens       users.TokenIssuer // puede ser nil: register/login sin token

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Log         logger.Logger
	Metrics     *metrics.Metrics
	Photos      pets.PhotoStore
	AuthLimiter *ratelimiter.KeyLimiter

	// UploadDir se sirve en /uploads/ (solo con el backend local de fotos).
	UploadDir  string
	CORSOrigin string

	// Services permite a main reusar los services ya armados (p.ej. para el seed del admin).
	Services *Services
}

// Services son los módulos de dominio ya cableados a sus stores.
type Services struct {
	Pets     *pets.Service
	Events   *events.Service
	Workflow *applications.Workflow
	Users    *users.Service
}

func NewServices(opts Options) *Services {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	var (
		petRepo   pets.Repository
		eventRepo events.Repository
		appRepo   applications.Repository
		userRepo  users.Repository
		tx        applications.Transactor
	)

	if opts.DB != nil {
		petRepo = pg.NewPetsRepo(opts.DB)
		eventRepo = pg.NewEventsRepo(opts.DB)
		appRepo = pg.NewApplicationsRepo(opts.DB)
		userRepo = pg.NewUsersRepo(opts.DB)
		tx = pg.NewTransactor(opts.DB)
	} else {
		petRepo = mem.NewPetRepo()
		eventRepo = mem.NewEventRepo()
		appRepo = mem.NewApplicationRepo()
		userRepo = mem.NewUserRepo()
		tx = mem.NewTransactor()
	}

	eventsSvc := events.NewService(eventRepo)

	petsSvc := pets.NewService(petRepo, pets.Deps{
		Photos:  opts.Photos,
		Events:  eventsSvc,
		Metrics: opts.Metrics,
		Log:     log.With(map[string]any{"module": "pets"}),
	})

	wf := applications.NewWorkflow(appRepo, petRepo, applications.Deps{
		Tx:      tx,
		Events:  eventsSvc,
		Metrics: opts.Metrics,
		Log:     log.With(map[string]any{"module": "applications"}),
	})

	usersSvc := users.NewService(userRepo, opts.Tokens, log.With(map[string]any{"module": "users"}))

	return &Services{
		Pets:     petsSvc,
		Events:   eventsSvc,
		Workflow: wf,
		Users:    usersSvc,
	}
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	svcs := opts.Services
	if svcs == nil {
		svcs = NewServices(opts)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log, opts.Metrics))
	r.Use(corsHandler(opts.CORSOrigin))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	health := func(w http.ResponseWriter, _ *http.Request) {
		httpresp.Success(w, http.StatusOK, "Server is running", nil)
	}
	r.Get("/health", health)
	r.Get("/api/health", health)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httpresp.Success(w, http.StatusOK, "Pet Adoption API", map[string]string{
			"docs":   "/api-docs/index.html",
			"health": "/api/health",
		})
	})

	r.Get("/api-docs/*", httpSwagger.Handler(httpSwagger.URL("/api-docs/doc.json")))
	r.Handle("/metrics", opts.Metrics.Handler())

	if dir := strings.TrimSpace(opts.UploadDir); dir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir))))
	}

	// Rutas por módulo
	r.Route("/api", func(api chi.Router) {
		users.RegisterRoutes(api, svcs.Users, opts.AuthLimiter, log)
		pets.RegisterRoutes(api, svcs.Pets, log)
		events.RegisterRoutes(api, svcs.Events, svcs.Pets, log)
		applications.RegisterRoutes(api, svcs.Workflow, svcs.Pets, svcs.Users, log)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpresp.Fail(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpresp.Fail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

func corsHandler(origin string) func(http.Handler) http.Handler {
	origins := []string{"*"}
	if o := strings.TrimSpace(origin); o != "" {
		origins = strings.Split(o, ",")
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Debug-User-ID", "X-Debug-Role"},
		AllowCredentials: true,
	}).Handler
}
