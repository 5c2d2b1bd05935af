//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"voicenote/internal/api/server"
	"voicenote/internal/app/repository"
	"voicenote/internal/config"
)

// InitializeServer wires the HTTP server with its store, clients and caches.
func InitializeServer(cfg config.Config, logger *zap.Logger) (*server.Server, func(), error) {
	wire.Build(ServerSet)
	return nil, nil, nil
}

// InitializeStore opens and migrates the configured database.
func InitializeStore(cfg config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	wire.Build(StoreSet)
	return nil, nil, nil
}
