package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"wayfarer/contexts/trip-coordination/decision-board-engine/domain/entities"
	domainerrors "wayfarer/contexts/trip-coordination/decision-board-engine/domain/errors"
	"wayfarer/contexts/trip-coordination/decision-board-engine/ports"
	"wayfarer/internal/shared/outbox"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) CreateBoard(ctx context.Context, board entities.Board) error {
	row := boardModelFromEntity(board)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrBoardExists
		}
		return r.logError("board_repo_create_failed", err,
			"board_id", row.ID,
			"trip_id", row.TripID,
		)
	}
	return nil
}

func (r *Repository) GetBoard(ctx context.Context, boardID string) (entities.Board, error) {
	var row boardModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(boardID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Board{}, domainerrors.ErrBoardNotFound
		}
		return entities.Board{}, r.logError("board_repo_get_failed", err, "board_id", strings.TrimSpace(boardID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetActiveBoardByTrip(ctx context.Context, tripID string) (entities.Board, bool, error) {
	var row boardModel
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", strings.TrimSpace(tripID)).
		Where("phase IN ?", []string{string(entities.PhaseDiscussion), string(entities.PhaseVoting)}).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Board{}, false, nil
		}
		return entities.Board{}, false, r.logError("board_repo_get_active_failed", err,
			"trip_id", strings.TrimSpace(tripID),
		)
	}
	return row.toEntity(), true, nil
}

// UpdateBoard is conditioned on the stored version; zero affected rows means a
// concurrent writer won and the caller retries against fresh state.
func (r *Repository) UpdateBoard(ctx context.Context, board entities.Board, expectedVersion int64) error {
	row := boardModelFromEntity(board)
	result := r.db.WithContext(ctx).
		Model(&boardModel{}).
		Where("id = ?", row.ID).
		Where("version = ?", expectedVersion).
		Updates(map[string]any{
			"phase":             row.Phase,
			"winning_option_id": row.WinningOptionID,
			"version":           row.Version,
			"updated_at":        row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("board_repo_update_failed", result.Error,
			"board_id", row.ID,
			"expected_version", expectedVersion,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrVersionConflict
	}
	return nil
}

func (r *Repository) ListExpiredVotingBoards(ctx context.Context, now time.Time, limit int) ([]entities.Board, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []boardModel
	err := r.db.WithContext(ctx).
		Where("phase = ?", string(entities.PhaseVoting)).
		Where("voting_deadline < ?", now.UTC()).
		Order("voting_deadline ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("board_repo_list_expired_failed", err)
	}
	items := make([]entities.Board, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// AppendVote relies on the composite unique index over (board_id, voter_id,
// option_id) as the authoritative duplicate-vote guard.
func (r *Repository) AppendVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("board_repo_append_vote_failed", err,
			"board_id", row.BoardID,
			"voter_id", row.VoterID,
			"option_id", row.OptionID,
		)
	}
	return nil
}

func (r *Repository) ListVotesByBoard(ctx context.Context, boardID string) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("board_id = ?", strings.TrimSpace(boardID)).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("board_repo_list_votes_failed", err,
			"board_id", strings.TrimSpace(boardID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) HasVote(ctx context.Context, boardID string, voterID string, optionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("board_id = ?", strings.TrimSpace(boardID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("option_id = ?", strings.TrimSpace(optionID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("board_repo_has_vote_failed", err,
			"board_id", strings.TrimSpace(boardID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return count > 0, nil
}

// Membership and option lookups read projection tables maintained by the
// trip-management and itinerary modules.

func (r *Repository) IsMember(ctx context.Context, tripID string, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&tripMemberModel{}).
		Where("trip_id = ?", strings.TrimSpace(tripID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("board_repo_is_member_failed", err,
			"trip_id", strings.TrimSpace(tripID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return count > 0, nil
}

func (r *Repository) IsOrganizer(ctx context.Context, tripID string, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&tripMemberModel{}).
		Where("trip_id = ?", strings.TrimSpace(tripID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("organizer = ?", true).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("board_repo_is_organizer_failed", err,
			"trip_id", strings.TrimSpace(tripID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return count > 0, nil
}

func (r *Repository) EligibleVoterCount(ctx context.Context, tripID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&tripMemberModel{}).
		Where("trip_id = ?", strings.TrimSpace(tripID)).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("board_repo_voter_count_failed", err,
			"trip_id", strings.TrimSpace(tripID),
		)
	}
	return int(count), nil
}

func (r *Repository) OptionBelongsToTrip(ctx context.Context, optionID string, tripID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&itineraryOptionModel{}).
		Where("id = ?", strings.TrimSpace(optionID)).
		Where("trip_id = ?", strings.TrimSpace(tripID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("board_repo_option_lookup_failed", err,
			"option_id", strings.TrimSpace(optionID),
			"trip_id", strings.TrimSpace(tripID),
		)
	}
	return count > 0, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("board_repo_outbox_marshal_failed", err, "event_id", envelope.EventID)
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	row := outboxModel{
		ID:           outboxID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outbox.StatusPending,
		CreatedAt:    createdAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("board_repo_outbox_insert_failed", err, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("board_repo_outbox_list_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.ID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("board_repo_outbox_mark_failed", result.Error, "outbox_id", outboxID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "trip-coordination/decision-board-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("decision board repository operation failed", fields...)
	return err
}

// SystemClock and UUIDGenerator back the Clock/IDGenerator ports in
// production wiring.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.BoardRepository = (*Repository)(nil)
var _ ports.VoteLedger = (*Repository)(nil)
var _ ports.TripDirectory = (*Repository)(nil)
var _ ports.ItineraryCatalog = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}
