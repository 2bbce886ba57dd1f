package workers

import (
	"context"
	"log/slog"
	"time"

	application "wayfarer/contexts/trip-coordination/decision-board-engine/application"
	"wayfarer/contexts/trip-coordination/decision-board-engine/application/commands"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
)

// DeadlineSweeper closes voting boards whose deadline passed without traffic.
// The write path already settles expired boards lazily; the sweeper guarantees
// closure for boards nobody touches again.
type DeadlineSweeper struct {
	Boards    ports.BoardRepository
	Lifecycle *commands.BoardUseCase
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (s DeadlineSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	limit := s.BatchSize
	if limit <= 0 {
		limit = 50
	}
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	expired, err := s.Boards.ListExpiredVotingBoards(ctx, now, limit)
	if err != nil {
		logger.Error("deadline sweep list failed",
			"event", "board_deadline_sweep_list_failed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	settled := 0
	for _, board := range expired {
		done, err := s.Lifecycle.SettleExpired(ctx, board.BoardID)
		if err != nil {
			logger.Error("deadline sweep settle failed",
				"event", "board_deadline_sweep_settle_failed",
				"module", "trip-coordination/decision-board-engine",
				"layer", "worker",
				"board_id", board.BoardID,
				"error", err.Error(),
			)
			return err
		}
		if done {
			settled++
		}
	}

	if settled > 0 {
		logger.Info("deadline sweep cycle completed",
			"event", "board_deadline_sweep_completed",
			"module", "trip-coordination/decision-board-engine",
			"layer", "worker",
			"settled_count", settled,
		)
	}
	return nil
}
