package electionengine

import (
	"log/slog"

	httpadapter "trustvote/contexts/election-core/election-engine/adapters/http"
	"trustvote/contexts/election-core/election-engine/adapters/memory"
	"trustvote/contexts/election-core/election-engine/application/commands"
	"trustvote/contexts/election-core/election-engine/application/queries"
	"trustvote/contexts/election-core/election-engine/domain/entities"
	"trustvote/contexts/election-core/election-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Elections   ports.ElectionRepository
	Eligibility ports.EligibilityRepository
	Ballots     ports.BallotRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	setupUseCase := commands.SetupUseCase{
		Elections: deps.Elections,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	lifecycleUseCase := commands.LifecycleUseCase{
		Elections: deps.Elections,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	eligibilityUseCase := commands.EligibilityUseCase{
		Elections:   deps.Elections,
		Eligibility: deps.Eligibility,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	ballotUseCase := commands.BallotUseCase{
		Elections:   deps.Elections,
		Eligibility: deps.Eligibility,
		Ballots:     deps.Ballots,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Elections: deps.Elections,
		Ballots:   deps.Ballots,
		Clock:     deps.Clock,
	}
	statusUseCase := queries.StatusUseCase{
		Elections:   deps.Elections,
		Eligibility: deps.Eligibility,
		Ballots:     deps.Ballots,
	}
	return Module{
		Handler: httpadapter.Handler{
			Setup:       setupUseCase,
			Lifecycle:   lifecycleUseCase,
			Eligibility: eligibilityUseCase,
			Ballots:     ballotUseCase,
			Results:     resultsUseCase,
			Status:      statusUseCase,
			Logger:      deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Ballot, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Elections:   store,
		Eligibility: store,
		Ballots:     store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
