package main

import (
	"github.com/hibiken/asynq"

	importJob "backoffice-backend/internal/domains/importacao/job"
	"backoffice-backend/internal/shared"
	"backoffice-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	importWrite *importJob.ImportWriteHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		importWrite: c.ImportWriteHandler,
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeImportWrite, h.importWrite.ProcessTask)
}
