package notefold

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Router builds the HTTP route table. Exposed separately from Run so tests
// can drive the handlers through httptest without binding a port.
//
// Routes:
//
//	GET    /api/health                 - service health status
//	GET    /api/pages                  - flat page list for the caller
//	GET    /api/pages/tree             - assembled page forest
//	POST   /api/pages                  - create page (position assigned, seed block)
//	GET    /api/pages/{id}             - get one page
//	PATCH  /api/pages/{id}             - partial title/icon/parent update
//	DELETE /api/pages/{id}             - delete page and its blocks
//	GET    /api/pages/{id}/blocks      - page blocks ordered by position
//	POST   /api/pages/{id}/import      - append blocks parsed from a markdown body
//	PUT    /api/blocks/{id}            - insert-or-replace a block
//	DELETE /api/blocks/{id}            - delete a block
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", a.handleHealth).Methods("GET")

	api.HandleFunc("/pages", a.handleListPages).Methods("GET")
	api.HandleFunc("/pages/tree", a.handlePagesTree).Methods("GET")
	api.HandleFunc("/pages", a.handleCreatePage).Methods("POST")
	api.HandleFunc("/pages/{id}", a.handleGetPage).Methods("GET")
	api.HandleFunc("/pages/{id}", a.handleUpdatePage).Methods("PATCH")
	api.HandleFunc("/pages/{id}", a.handleDeletePage).Methods("DELETE")
	api.HandleFunc("/pages/{id}/blocks", a.handleListBlocks).Methods("GET")
	api.HandleFunc("/pages/{id}/import", a.handleImportMarkdown).Methods("POST")

	api.HandleFunc("/blocks/{id}", a.handleUpsertBlock).Methods("PUT")
	api.HandleFunc("/blocks/{id}", a.handleDeleteBlock).Methods("DELETE")

	return router
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails. On cancellation, in-flight requests get up to 5 seconds
// to complete.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	addr := fmt.Sprintf(":%s", a.config.ServerPort)
	a.log.Info().Str("addr", addr).Msg("starting notefold server")

	server := &http.Server{
		Addr:    addr,
		Handler: a.Router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

// Migrate delegates schema migration to the configured store.
func (a *App) Migrate(ctx context.Context, cmd *MigrateCommand) error {
	return a.store.Migrate(ctx)
}
