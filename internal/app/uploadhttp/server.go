package uploadhttp

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sir_venger/upload_lite/internal/config"
	"github.com/sir_venger/upload_lite/internal/repo/sessions"
	"github.com/sir_venger/upload_lite/internal/staging"
	"github.com/sir_venger/upload_lite/internal/usecase/uploadsvc"
)

type Server struct {
	Uploads  uploadsvc.Service
	Cfg      *config.Config
	validate *validator.Validate
}

// NewServer конструктор
func NewServer(ctx context.Context, cfg *config.Config) (http.Handler, *Server, error) {
	svc, err := buildUploadService(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	srv := &Server{
		Uploads:  svc,
		Cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	return srv.routes(), srv, nil
}

// routes регистрирует обработчики сессий, частей, здоровья и GC.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/sessions", func(sr chi.Router) {
		sr.Post("/", s.createSession)
		sr.Get("/", s.listSessions)
		sr.Get("/{id}", s.getSession)
		sr.Delete("/{id}", s.deleteSession)
		sr.Get("/{id}/content", s.getContent)
		sr.Put("/{id}/chunks/{offset}", s.putChunk)
	})

	r.Get("/health", s.health)
	r.Post("/admin/gc", s.gcOnce)

	return r
}

func buildUploadService(ctx context.Context, cfg *config.Config) (uploadsvc.Service, error) {
	var store uploadsvc.SessionStore
	if strings.HasPrefix(cfg.MetaDSN, "memory://") {
		store = sessions.NewMemoryStore()
	} else {
		pg, err := sessions.NewPGStore(ctx, cfg.MetaDSN)
		if err != nil {
			return nil, err
		}
		store = pg
	}

	area, err := staging.New(cfg.StagingDir)
	if err != nil {
		return nil, err
	}
	if err := ensureDir(cfg.UploadDir); err != nil {
		return nil, err
	}

	return uploadsvc.New(uploadsvc.Deps{
		Sessions:        store,
		Staging:         area,
		UploadDir:       cfg.UploadDir,
		MaxDeclaredSize: cfg.MaxDeclaredSize,
	}), nil
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
