package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "petverse/internal/docs"

	"petverse/internal/adapters/storage/media"
	mem "petverse/internal/adapters/storage/memory"
	pg "petverse/internal/adapters/storage/postgres"
	"petverse/internal/domain/pets"
	"petverse/internal/domain/records"
	"petverse/internal/domain/users"
	"petverse/internal/middleware"
	"petverse/internal/platform/logger"
	"petverse/internal/platform/metrics"
	"petverse/internal/platform/respond"
	"petverse/internal/ports/auth"
)

// TokenManager firma y verifica los access tokens (jwtauth.Manager).
type TokenManager interface {
	auth.AuthVerifier
	auth.TokenIssuer
}

type Options struct {
	Tokens TokenManager

	// nil => /auth/google/callback responde 501
	Identity auth.IdentityVerifier

	// Opcional: si viene, usa Postgres (ya migrado). Si no, in-memory.
	DB *sql.DB

	// vacío => upload-image responde 501
	MediaDir string

	Logger  logger.Logger
	Metrics *metrics.ServerMetrics
}

func NewRouter(opts Options) http.Handler {
	log := logger.OrNop(opts.Logger)
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}
	r.Use(middleware.AuthContext(opts.Tokens))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		userRepo   users.Repository
		prefsRepo  users.PreferencesRepository
		petRepo    pets.Repository
		recordRepo records.Repository
		images     pets.ImageStore
	)

	if opts.DB != nil {
		usersPG := pg.NewUsersRepo(opts.DB)
		userRepo, prefsRepo = usersPG, usersPG
		petRepo = pg.NewPetsRepo(opts.DB)
		recordRepo = pg.NewRecordsRepo(opts.DB)
	} else {
		usersMem := mem.NewUserRepo()
		userRepo, prefsRepo = usersMem, usersMem
		petRepo = mem.NewPetRepo()
		recordRepo = mem.NewRecordRepo()
	}

	if opts.MediaDir != "" {
		disk, err := media.NewDiskStore(opts.MediaDir)
		if err != nil {
			log.Error("media store disabled", map[string]any{"dir": opts.MediaDir, "error": err.Error()})
		} else {
			images = disk
			fs := http.StripPrefix(media.URLPrefix, http.FileServer(http.Dir(disk.Root())))
			r.Handle(media.URLPrefix+"*", fs)
		}
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, prefsRepo, opts.Tokens, opts.Identity)
	petsSvc := pets.NewService(petRepo, images)
	recordsSvc := records.NewService(recordRepo, petsSvc)

	// Rutas públicas
	users.RegisterAuthRoutes(r, usersSvc)

	// Rutas con bearer
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth)
		users.RegisterRoutes(pr, usersSvc, petsSvc)
		pets.RegisterRoutes(pr, petsSvc)
		records.RegisterRoutes(pr, recordsSvc)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Detail(w, http.StatusNotFound, "Not Found")
	})

	return r
}
