package colony

import (
	"fmt"

	"github.com/andrescamacho/colony-go/internal/application/colony/commands"
	"github.com/andrescamacho/colony-go/internal/application/colony/queries"
	"github.com/andrescamacho/colony-go/internal/application/common"
	"github.com/andrescamacho/colony-go/internal/application/mediator"
	"github.com/andrescamacho/colony-go/internal/application/simulation"
)

// Repositories groups the optional persistence ports. Nil repositories
// disable the handlers that need them.
type Repositories struct {
	Ledgers     common.LedgerSnapshotRepository
	Assignments common.AssignmentRepository
	Journal     common.ResourceJournalRepository
}

// RegisterHandlers wires every colony command and query into m
func RegisterHandlers(m mediator.Mediator, engine *simulation.Engine, repos Repositories, journal *simulation.Journal) error {
	regs := []func() error{
		func() error {
			return mediator.RegisterHandler[*commands.SpawnWorkerCommand](m, commands.NewSpawnWorkerHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*commands.RemoveWorkerCommand](m, commands.NewRemoveWorkerHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*commands.ForceIdleCommand](m, commands.NewForceIdleHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*commands.ChangeProfessionCommand](m, commands.NewChangeProfessionHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*commands.PlaceStructureCommand](m, commands.NewPlaceStructureHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*commands.RemoveStructureCommand](m, commands.NewRemoveStructureHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*commands.AssignWorkerCommand](m, commands.NewAssignWorkerHandler(engine, repos.Assignments))
		},
		func() error {
			return mediator.RegisterHandler[*commands.UnassignWorkerCommand](m, commands.NewUnassignWorkerHandler(engine, repos.Assignments))
		},
		func() error {
			return mediator.RegisterHandler[*commands.ClearZoneCommand](m, commands.NewClearZoneHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*commands.RespawnHarvestablesCommand](m, commands.NewRespawnHarvestablesHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*queries.ListWorkersQuery](m, queries.NewListWorkersHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*queries.GetWorkerQuery](m, queries.NewGetWorkerHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*queries.ListStructuresQuery](m, queries.NewListStructuresHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*queries.StructureResourcesQuery](m, queries.NewStructureResourcesHandler(engine))
		},
		func() error {
			return mediator.RegisterHandler[*queries.StatusQuery](m, queries.NewStatusHandler(engine))
		},
	}

	if repos.Ledgers != nil {
		regs = append(regs,
			func() error {
				return mediator.RegisterHandler[*commands.SaveStateCommand](m, commands.NewSaveStateHandler(engine, repos.Ledgers, journal))
			},
			func() error {
				return mediator.RegisterHandler[*commands.RestoreStateCommand](m, commands.NewRestoreStateHandler(engine, repos.Ledgers))
			},
		)
	}
	if repos.Assignments != nil {
		regs = append(regs, func() error {
			return mediator.RegisterHandler[*commands.RestoreAssignmentsCommand](m, commands.NewRestoreAssignmentsHandler(engine, repos.Assignments))
		})
	}
	if repos.Journal != nil {
		regs = append(regs, func() error {
			return mediator.RegisterHandler[*queries.ResourceHistoryQuery](m, queries.NewResourceHistoryHandler(repos.Journal))
		})
	}

	for _, register := range regs {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register colony handlers: %w", err)
		}
	}
	return nil
}
