// Package routes registers the read-only JSON API.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/cabotage/cabotage/app"
	"github.com/cabotage/cabotage/web/handlers"
)

// NewRouter returns the API router with every route registered
func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger)
	r.Use(middleware.Recoverer)

	RegisterUtilityRoutes(r)
	RegisterProjectRoutes(r)
	RegisterApplicationRoutes(r)
	RegisterReleaseRoutes(r)
	RegisterEntityRoutes(r)
	return r
}

// RegisterUtilityRoutes registers the health check
func RegisterUtilityRoutes(r chi.Router) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": handlers.GetVersion(),
		})
	})
}

// RegisterProjectRoutes registers project routes
func RegisterProjectRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			projects, err := app.GetProjectService().List()
			if err != nil {
				handlers.WriteError(w, "list_projects", err)
				return
			}
			handlers.WriteJSON(w, http.StatusOK, handlers.ConvertProjectsToViews(projects))
		})

		r.Get("/{id}", handlers.Get("id", "get_project", func(id uuid.UUID) (any, error) {
			p, err := app.GetProjectService().Get(id)
			if err != nil {
				return nil, err
			}
			return handlers.ConvertProjectToView(p), nil
		}))

		r.Get("/{id}/applications", handlers.Get("id", "list_applications", func(id uuid.UUID) (any, error) {
			applications, err := app.GetProjectService().ListApplications(id)
			if err != nil {
				return nil, err
			}
			return handlers.ConvertApplicationsToViews(applications), nil
		}))
	})
}

// RegisterApplicationRoutes registers application routes, including release planning
func RegisterApplicationRoutes(r chi.Router) {
	r.Route("/applications/{id}", func(r chi.Router) {
		r.Get("/", handlers.Get("id", "get_application", func(id uuid.UUID) (any, error) {
			a, err := app.GetProjectService().GetApplication(id)
			if err != nil {
				return nil, err
			}
			return handlers.ConvertApplicationToView(a), nil
		}))

		r.Get("/candidate", handlers.Get("id", "release_candidate", func(id uuid.UUID) (any, error) {
			candidate, err := app.GetReleaseService().Candidate(id)
			if err != nil {
				return nil, err
			}
			return candidate.AsDict(), nil
		}))

		r.Get("/readiness", handlers.Get("id", "ready_for_deployment", func(id uuid.UUID) (any, error) {
			imageDiff, configurationDiff, err := app.GetReleaseService().ReadyForDeployment(id)
			if err != nil {
				return nil, err
			}
			return handlers.ConvertReadinessToView(imageDiff, configurationDiff), nil
		}))

		r.Get("/releases", handlers.Get("id", "list_releases", func(id uuid.UUID) (any, error) {
			releases, err := app.GetReleaseService().List(id)
			if err != nil {
				return nil, err
			}
			return handlers.ConvertReleasesToViews(releases), nil
		}))
	})
}

// RegisterReleaseRoutes registers release routes
func RegisterReleaseRoutes(r chi.Router) {
	r.Route("/releases/{id}", func(r chi.Router) {
		r.Get("/", handlers.Get("id", "get_release", func(id uuid.UUID) (any, error) {
			rel, err := app.GetReleaseService().Get(id)
			if err != nil {
				return nil, err
			}
			return handlers.ConvertReleaseToView(rel), nil
		}))

		r.Get("/status", handlers.Get("id", "release_status", func(id uuid.UUID) (any, error) {
			releases := app.GetReleaseService()
			rel, err := releases.Get(id)
			if err != nil {
				return nil, err
			}
			reasons, err := releases.DeposedReason(rel)
			if err != nil {
				return nil, err
			}
			return handlers.ReleaseStatusView{
				ID:            rel.ID,
				Status:        rel.Status(),
				Validity:      releases.Validity(rel).String(),
				DeposedReason: reasons,
			}, nil
		}))

		r.Get("/envconsul", handlers.Get("id", "release_envconsul", func(id uuid.UUID) (any, error) {
			releases := app.GetReleaseService()
			rel, err := releases.Get(id)
			if err != nil {
				return nil, err
			}
			return releases.EnvconsulConfigurations(rel)
		}))
	})
}

// RegisterEntityRoutes registers lookups of images, configurations and history by id
func RegisterEntityRoutes(r chi.Router) {
	r.Get("/images/{id}", handlers.Get("id", "get_image", func(id uuid.UUID) (any, error) {
		i, err := app.GetImageService().Get(id)
		if err != nil {
			return nil, err
		}
		return handlers.ConvertImageToView(i), nil
	}))

	r.Get("/configurations/{id}", handlers.Get("id", "get_configuration", func(id uuid.UUID) (any, error) {
		c, err := app.GetConfigurationService().Get(id)
		if err != nil {
			return nil, err
		}
		return handlers.ConvertConfigurationToView(c), nil
	}))

	r.Get("/history/{id}", handlers.Get("id", "entity_history", func(id uuid.UUID) (any, error) {
		entries, err := app.GetHistoryRepository().ForEntity(id)
		if err != nil {
			return nil, err
		}
		return handlers.ConvertHistoryToViews(entries), nil
	}))
}
