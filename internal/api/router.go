package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/starford/laguz/internal/cloud"
	"github.com/starford/laguz/internal/idgen"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/sse"
	"github.com/starford/laguz/internal/store"
	"github.com/starford/laguz/internal/tabs"
)

// Deps bundles what the router needs. Broker and Cloud may be nil.
type Deps struct {
	Service   *noteservice.Service
	Workspace *tabs.Workspace
	Store     store.Store
	IDs       *idgen.Generator
	Broker    *sse.Broker
	Cloud     cloud.Provider

	AuthEnabled bool
	AuthToken   string
	CORSOrigins []string
}

// NewRouter creates a chi router with every route mounted. API routes live
// under /api and share the Bearer auth middleware; image serving stays
// public so Markdown previews can embed them without headers.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d.Service, d.Workspace)
	wh := NewWorkspaceHandler(d.Service, d.Workspace, d.Broker)
	ih := NewImageHandler(d.Store, d.IDs)
	bh := NewBackupHandler(d.Service, d.Cloud)

	r := chi.NewRouter()

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/images/{id}", ih.Serve)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(d.AuthEnabled, d.AuthToken))

		// Notes and derived views.
		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Get("/notes/{id}", h.GetNote)
		r.Patch("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)
		r.Post("/notes/{id}/restore", h.RestoreNote)
		r.Delete("/notes/{id}/permanent", h.PermanentDeleteNote)
		r.Post("/notes/{id}/pin", h.TogglePin)
		r.Post("/notes/{id}/tasks/{line}/toggle", h.ToggleTask)
		r.Delete("/trash", h.EmptyTrash)
		r.Get("/tasks", h.ListTasks)

		// Folders and tags.
		r.Get("/folders", h.ListFolders)
		r.Post("/folders", h.CreateFolder)
		r.Delete("/folders/{id}", h.DeleteFolder)
		r.Get("/tags", h.ListTags)
		r.Post("/tags", h.CreateTag)
		r.Delete("/tags/{id}", h.DeleteTag)

		// Images.
		r.Post("/images", ih.Upload)
		r.Delete("/images/{id}", ih.Delete)

		// Workspace tabs and selection.
		r.Get("/workspace", wh.Get)
		r.Post("/workspace/selection/{id}", wh.Select)
		r.Post("/workspace/tabs/{id}", wh.Open)
		r.Post("/workspace/tabs/{id}/activate", wh.Switch)
		r.Delete("/workspace/tabs/{id}", wh.Close)
		r.Delete("/workspace/tabs", wh.CloseAll)

		// Backup, import, cloud.
		r.Get("/export", bh.Export)
		r.Post("/import", bh.Import)
		r.Post("/import/resolve", bh.Resolve)
		r.Get("/export/archive", bh.ExportArchive)
		r.Post("/import/archive", bh.ImportArchive)
		r.Get("/cloud/status", bh.CloudStatus)
		r.Get("/cloud/auth-url", bh.CloudAuthURL)
		r.Post("/cloud/connect", bh.CloudConnect)
		r.Post("/cloud/logout", bh.CloudLogout)
		r.Post("/cloud/backup", bh.CloudBackup)
		r.Get("/cloud/backups", bh.CloudBackups)
		r.Post("/cloud/restore", bh.CloudRestore)

		// SSE endpoint (protected by the same auth middleware).
		if d.Broker != nil {
			r.Method(http.MethodGet, "/events", d.Broker)
		}
	})

	return r
}
