package fx

import (
	"mission-tracker/internal/api"
	"mission-tracker/internal/config"
	"mission-tracker/internal/database"
	"mission-tracker/internal/discord"
	"mission-tracker/internal/intel"
	"mission-tracker/internal/logger"
	"mission-tracker/internal/repository"
	"mission-tracker/internal/server"
	"mission-tracker/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewMetadataRepository),
	fx.Provide(repository.NewAuditRepository),
	fx.Provide(repository.NewGrantsRepository),
	fx.Provide(repository.NewIntelRepository),
	// upstream clients
	fx.Provide(api.NewMissionClient),
	fx.Provide(discord.New),
	fx.Provide(intel.NewProcessor),
	// svc
	fx.Provide(service.NewDashboardService),
	fx.Provide(service.NewRosterService),
	fx.Provide(service.NewAdminService),
	// server
	fx.Provide(server.New),
)
