package postgresadapter

import (
	"context"
	"database/sql/driver"
	"errors"
	"log/slog"
	"strings"
	"time"

	"trustvote/contexts/election-core/election-engine/domain/entities"
	domainerrors "trustvote/contexts/election-core/election-engine/domain/errors"
	"trustvote/contexts/election-core/election-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// AutoMigrate creates or updates the schema owned by this service.
func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&electionModel{},
		&positionModel{},
		&partyModel{},
		&candidateModel{},
		&eligibilityModel{},
		&rollModel{},
		&ballotModel{},
		&outboxModel{},
	)
}

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":            row.Title,
			"description":      row.Description,
			"start_time":       row.StartTime,
			"end_time":         row.EndTime,
			"contract_address": row.ContractAddress,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.storageError("election_repo_save_election_failed", create.Error,
			"election_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.storageError("election_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListElections(ctx context.Context) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.storageError("election_repo_list_elections_failed", err)
	}
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// TransitionPhase is the atomic compare-and-swap backing the lifecycle state
// machine. The WHERE clause on the old phase guarantees the second of two
// racing administrators affects zero rows.
func (r *Repository) TransitionPhase(
	ctx context.Context,
	electionID string,
	from entities.Phase,
	to entities.Phase,
	updatedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&electionModel{}).
		Where("id = ?", strings.TrimSpace(electionID)).
		Where("phase = ?", string(from)).
		Updates(map[string]any{
			"phase":      string(to),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.storageError("election_repo_transition_phase_failed", result.Error,
			"election_id", strings.TrimSpace(electionID),
			"from_phase", string(from),
			"to_phase", string(to),
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SavePosition(ctx context.Context, position entities.Position) error {
	row := positionModelFromEntity(position)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrHandleTaken
		}
		return r.storageError("election_repo_save_position_failed", err,
			"position_id", row.ID,
			"election_id", row.ElectionID,
		)
	}
	return nil
}

func (r *Repository) GetPosition(ctx context.Context, positionID string) (entities.Position, error) {
	var row positionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(positionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Position{}, domainerrors.ErrPositionNotFound
		}
		return entities.Position{}, r.storageError("election_repo_get_position_failed", err,
			"position_id", strings.TrimSpace(positionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListPositionsByElection(ctx context.Context, electionID string) ([]entities.Position, error) {
	var rows []positionModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("handle ASC").
		Find(&rows).Error; err != nil {
		return nil, r.storageError("election_repo_list_positions_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Position, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) PositionHandleExists(ctx context.Context, handle int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&positionModel{}).
		Where("handle = ?", handle).
		Count(&count).Error; err != nil {
		return false, r.storageError("election_repo_position_handle_lookup_failed", err,
			"handle", handle,
		)
	}
	return count > 0, nil
}

func (r *Repository) SaveParty(ctx context.Context, party entities.Party) error {
	row := partyModelFromEntity(party)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":     row.Name,
			"logo_url": row.LogoURL,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.storageError("election_repo_save_party_failed", create.Error,
			"party_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetParty(ctx context.Context, partyID string) (entities.Party, error) {
	var row partyModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(partyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Party{}, domainerrors.ErrPartyNotFound
		}
		return entities.Party{}, r.storageError("election_repo_get_party_failed", err,
			"party_id", strings.TrimSpace(partyID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrHandleTaken
		}
		return r.storageError("election_repo_save_candidate_failed", err,
			"candidate_id", row.ID,
			"election_id", row.ElectionID,
		)
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.storageError("election_repo_get_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidatesByPosition(ctx context.Context, positionID string) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("position_id = ?", strings.TrimSpace(positionID)).
		Order("handle ASC").
		Find(&rows).Error; err != nil {
		return nil, r.storageError("election_repo_list_candidates_failed", err,
			"position_id", strings.TrimSpace(positionID),
		)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CandidateHandleExists(ctx context.Context, handle int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&candidateModel{}).
		Where("handle = ?", handle).
		Count(&count).Error; err != nil {
		return false, r.storageError("election_repo_candidate_handle_lookup_failed", err,
			"handle", handle,
		)
	}
	return count > 0, nil
}

func (r *Repository) GetEligibility(ctx context.Context, electionID string, voterKey string) (entities.EligibilityEntry, bool, error) {
	var row eligibilityModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("voter_key = ?", strings.TrimSpace(voterKey)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.EligibilityEntry{}, false, nil
		}
		return entities.EligibilityEntry{}, false, r.storageError("election_repo_get_eligibility_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"voter_key", strings.TrimSpace(voterKey),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpsertEligibility(ctx context.Context, entry entities.EligibilityEntry) (bool, error) {
	row := eligibilityModel{
		ElectionID:  strings.TrimSpace(entry.ElectionID),
		VoterKey:    strings.TrimSpace(entry.VoterKey),
		Whitelisted: entry.Whitelisted,
		GrantedAt:   entry.GrantedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "election_id"}, {Name: "voter_key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.storageError("election_repo_upsert_eligibility_failed", create.Error,
			"election_id", row.ElectionID,
			"voter_key", row.VoterKey,
		)
	}
	if create.RowsAffected > 0 {
		return true, nil
	}

	result := r.db.WithContext(ctx).
		Model(&eligibilityModel{}).
		Where("election_id = ?", row.ElectionID).
		Where("voter_key = ?", row.VoterKey).
		Where("whitelisted = ?", !entry.Whitelisted).
		Updates(map[string]any{
			"whitelisted": entry.Whitelisted,
			"granted_at":  row.GrantedAt,
		})
	if result.Error != nil {
		return false, r.storageError("election_repo_update_eligibility_failed", result.Error,
			"election_id", row.ElectionID,
			"voter_key", row.VoterKey,
		)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SaveRollEntry(ctx context.Context, entry entities.RollEntry) error {
	row := rollModelFromEntity(entry)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "election_id"}, {Name: "roll_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":      row.Name,
			"member_id": row.MemberID,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.storageError("election_repo_save_roll_entry_failed", create.Error,
			"election_id", row.ElectionID,
			"roll_key", row.RollKey,
		)
	}
	return nil
}

func (r *Repository) GetRollEntry(ctx context.Context, electionID string, rollKey string) (entities.RollEntry, bool, error) {
	var row rollModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("roll_key = ?", strings.TrimSpace(rollKey)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RollEntry{}, false, nil
		}
		return entities.RollEntry{}, false, r.storageError("election_repo_get_roll_entry_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"roll_key", strings.TrimSpace(rollKey),
		)
	}
	return row.toEntity(), true, nil
}

// InsertBallot relies on the ballots unique index over
// (election_id, position_id, voter_key). ON CONFLICT DO NOTHING plus a
// RowsAffected check turns the race loser into ErrAlreadyVoted without a
// read-then-write window.
func (r *Repository) InsertBallot(ctx context.Context, ballot entities.Ballot) error {
	row := ballotModelFromEntity(ballot)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "election_id"}, {Name: "position_id"}, {Name: "voter_key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrAlreadyVoted
		}
		return r.storageError("election_repo_insert_ballot_failed", create.Error,
			"ballot_id", row.ID,
			"election_id", row.ElectionID,
			"position_id", row.PositionID,
			"voter_key", row.VoterKey,
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrAlreadyVoted
	}
	return nil
}

func (r *Repository) GetBallot(ctx context.Context, ballotID string) (entities.Ballot, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(ballotID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, domainerrors.ErrBallotNotFound
		}
		return entities.Ballot{}, r.storageError("election_repo_get_ballot_failed", err,
			"ballot_id", strings.TrimSpace(ballotID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetBallotByIdentity(
	ctx context.Context,
	electionID string,
	positionID string,
	voterKey string,
) (entities.Ballot, bool, error) {
	var row ballotModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("position_id = ?", strings.TrimSpace(positionID)).
		Where("voter_key = ?", strings.TrimSpace(voterKey)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Ballot{}, false, nil
		}
		return entities.Ballot{}, false, r.storageError("election_repo_get_ballot_by_identity_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"position_id", strings.TrimSpace(positionID),
			"voter_key", strings.TrimSpace(voterKey),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListBallots(ctx context.Context, electionID string, filter ports.BallotFilter) ([]entities.Ballot, error) {
	tx := r.db.WithContext(ctx).Model(&ballotModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID))
	if strings.TrimSpace(filter.PositionID) != "" {
		tx = tx.Where("position_id = ?", strings.TrimSpace(filter.PositionID))
	}
	if strings.TrimSpace(filter.CandidateID) != "" {
		tx = tx.Where("candidate_id = ?", strings.TrimSpace(filter.CandidateID))
	}
	var rows []ballotModel
	if err := tx.Order("cast_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, r.storageError("election_repo_list_ballots_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Ballot, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SetBallotTxRef(ctx context.Context, ballotID string, txRef string) error {
	result := r.db.WithContext(ctx).
		Model(&ballotModel{}).
		Where("id = ?", strings.TrimSpace(ballotID)).
		Update("tx_ref", strings.TrimSpace(txRef))
	if result.Error != nil {
		return r.storageError("election_repo_set_ballot_tx_ref_failed", result.Error,
			"ballot_id", strings.TrimSpace(ballotID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrBallotNotFound
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := marshalEnvelope(envelope)
	if err != nil {
		return r.storageError("election_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.storageError("election_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.storageError("election_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.storageError("election_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrStorageUnavailable
	}
	return nil
}

// storageError logs the failure and maps transport-level faults to
// ErrStorageUnavailable so callers can retry the same idempotent request.
// Business-rule errors never pass through here.
func (r *Repository) storageError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-core/election-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("election repository operation failed", fields...)
	if isConnectionFailure(err) {
		return domainerrors.ErrStorageUnavailable
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return pgconn.Timeout(err)
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.EligibilityRepository = (*Repository)(nil)
var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
