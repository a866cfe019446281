package revenuesplitservice

import (
	"log/slog"

	httpadapter "splitvault/contexts/treasury-core/revenue-split-service/adapters/http"
	"splitvault/contexts/treasury-core/revenue-split-service/adapters/memory"
	"splitvault/contexts/treasury-core/revenue-split-service/adapters/settlement"
	"splitvault/contexts/treasury-core/revenue-split-service/application/commands"
	"splitvault/contexts/treasury-core/revenue-split-service/application/queries"
	"splitvault/contexts/treasury-core/revenue-split-service/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Store      *memory.Store
	Gate       *memory.OwnerGate
	Settlement *settlement.Gateway
}

type Dependencies struct {
	Repository ports.Repository
	Gate       ports.AuthorizationGate
	Transfer   ports.AssetTransfer
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Outbox     ports.OutboxWriter
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	commandUseCase := commands.UseCase{
		Repository: deps.Repository,
		Gate:       deps.Gate,
		Transfer:   deps.Transfer,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Outbox:     deps.Outbox,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.UseCase{
		Repository: deps.Repository,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Commands: commandUseCase,
			Queries:  queryUseCase,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(ownerID string, logger *slog.Logger) Module {
	store := memory.NewStore()
	gate := memory.NewOwnerGate(ownerID)
	gateway := settlement.NewGateway(logger)
	module := NewModule(Dependencies{
		Repository: store,
		Gate:       gate,
		Transfer:   gateway,
		Clock:      store,
		IDGen:      store,
		Outbox:     store,
		Logger:     logger,
	})
	module.Store = store
	module.Gate = gate
	module.Settlement = gateway
	return module
}
