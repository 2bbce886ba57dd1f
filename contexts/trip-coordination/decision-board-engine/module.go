package decisionboardengine

import (
	"log/slog"

	httpadapter "wayfarer/contexts/trip-coordination/decision-board-engine/adapters/http"
	"wayfarer/contexts/trip-coordination/decision-board-engine/adapters/memory"
	"wayfarer/contexts/trip-coordination/decision-board-engine/application/commands"
	"wayfarer/contexts/trip-coordination/decision-board-engine/application/queries"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
	"wayfarer/contexts/trip-coordination/decision-board-engine/realtime"
)

type Module struct {
	Handler    httpadapter.Handler
	Boards     *commands.BoardUseCase
	Registry   *realtime.Registry
	Dispatcher *realtime.Dispatcher
	Store      *memory.Store
}

type Dependencies struct {
	Boards        ports.BoardRepository
	Votes         ports.VoteLedger
	Trips         ports.TripDirectory
	Options       ports.ItineraryCatalog
	Outbox        ports.OutboxWriter
	Publisher     ports.EventPublisher
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	RealtimeTopic string
	InstanceID    string
	WriteAttempts int
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	registry := realtime.NewRegistry()
	dispatcher := &realtime.Dispatcher{
		Registry:  registry,
		Publisher: deps.Publisher,
		IDGen:     deps.IDGen,
		Topic:     deps.RealtimeTopic,
		Origin:    deps.InstanceID,
		Logger:    deps.Logger,
	}
	boardUseCase := &commands.BoardUseCase{
		Boards:        deps.Boards,
		Votes:         deps.Votes,
		Trips:         deps.Trips,
		Options:       deps.Options,
		Outbox:        deps.Outbox,
		Notifier:      dispatcher,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		WriteAttempts: deps.WriteAttempts,
		Logger:        deps.Logger,
	}
	summaryUseCase := queries.SummaryUseCase{
		Boards: deps.Boards,
		Votes:  deps.Votes,
		Trips:  deps.Trips,
	}
	return Module{
		Handler: httpadapter.Handler{
			Boards:    boardUseCase,
			Summaries: summaryUseCase,
			Logger:    deps.Logger,
		},
		Boards:     boardUseCase,
		Registry:   registry,
		Dispatcher: dispatcher,
	}
}

// NewInMemoryModule backs every port with the in-memory store. With no
// publisher the dispatcher runs local-only fan-out.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Boards:  store,
		Votes:   store,
		Trips:   store,
		Options: store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
