package router

import (
	"net/http"

	"github.com/senyabanana/creator-marketplace/internal/auth"
	"github.com/senyabanana/creator-marketplace/internal/gate"
	"github.com/senyabanana/creator-marketplace/internal/handlers"
	"github.com/senyabanana/creator-marketplace/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DashboardPath - представление, куда гейт отправляет пользователей без доступа.
const DashboardPath = "/api/dashboard"

// Handlers - набор обработчиков API.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Dashboard    *handlers.DashboardHandler
	Jobs         *handlers.JobHandler
	Proposals    *handlers.ProposalHandler
	Deliverables *handlers.DeliverableHandler
}

func InitRoutes(h Handlers, authService *auth.Service, roleGate *gate.Gate) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(authService.Middleware)

	r.Get("/api/ping", handlers.PingHandler)
	r.Post("/api/auth/signup", h.Auth.SignUp)
	r.Post("/api/auth/signin", h.Auth.SignIn)

	// Каталог опубликованных работ открыт только исполнителям.
	r.With(roleGate.RequireRole(models.CreatorRole, DashboardPath)).Get("/api/jobs", h.Jobs.BrowseJobs)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePrincipal)

		r.Post("/api/auth/signout", h.Auth.SignOut)

		r.Get("/api/profile", h.Profile.GetProfile)
		r.Put("/api/profile", h.Profile.UpdateProfile)

		r.Get(DashboardPath, h.Dashboard.GetDashboard)

		r.Post("/api/jobs", h.Jobs.PostJob)
		r.Get("/api/jobs/my", h.Jobs.MyJobs)
		r.Get("/api/jobs/{jobId}", h.Jobs.GetJob)
		r.Delete("/api/jobs/{jobId}", h.Jobs.DeleteJob)

		r.Post("/api/jobs/{jobId}/proposals", h.Proposals.SubmitProposal)
		r.Put("/api/proposals/{proposalId}/decision", h.Proposals.DecideProposal)

		r.Post("/api/proposals/{proposalId}/deliverables", h.Deliverables.SubmitDeliverable)
		r.Put("/api/deliverables/{deliverableId}/review", h.Deliverables.ReviewDeliverable)
		r.Get("/api/deliverables/{deliverableId}/file", h.Deliverables.DownloadDeliverable)
	})

	return r
}
