package repository

import (
	"context"
	"errors"
	"fmt"

	"gambler/wagering/database"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// lockTimeout bounds how long LockByID waits for another unit of work on the same bet
const lockTimeout = "2s"

const betColumns = `
	id, tournament_id, tournament_name, event_id, event_name, phase_id, match_id,
	contestant1_id, contestant1_name, contestant2_id, contestant2_name,
	status, winner, contestant1_pool, contestant2_pool, total_pool,
	minimum_bet, maximum_bet, fee_rate, allow_offers_in_progress, creator_id,
	disputed, dispute_reason, created_at, updated_at, resolved_at`

const participationColumns = `
	id, bet_id, user_id, prediction, amount, payout, claimed, claimed_at, created_at`

// BetRepository implements bet and participation data access
type BetRepository struct {
	q Queryable
}

// NewBetRepository creates a bet repository on the pool
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a bet repository bound to a transaction
func newBetRepositoryWithTx(tx Queryable) interfaces.BetRepository {
	return &BetRepository{q: tx}
}

// Create inserts a new bet
func (r *BetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	query := `
		INSERT INTO bets (
			tournament_id, tournament_name, event_id, event_name, phase_id, match_id,
			contestant1_id, contestant1_name, contestant2_id, contestant2_name,
			status, winner, contestant1_pool, contestant2_pool, total_pool,
			minimum_bet, maximum_bet, fee_rate, allow_offers_in_progress, creator_id,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		bet.Contest.TournamentID,
		bet.Contest.TournamentName,
		bet.Contest.EventID,
		bet.Contest.EventName,
		bet.Contest.PhaseID,
		bet.Contest.MatchID,
		bet.Contestant1.ID,
		bet.Contestant1.Name,
		bet.Contestant2.ID,
		bet.Contestant2.Name,
		bet.Status,
		bet.Winner,
		bet.Contestant1Pool,
		bet.Contestant2Pool,
		bet.TotalPool,
		bet.MinimumBet,
		bet.MaximumBet,
		bet.FeeRate,
		bet.AllowOffersInProgress,
		bet.CreatorID,
		bet.CreatedAt,
		bet.UpdatedAt,
	).Scan(&bet.ID)
	if err != nil {
		return translateError(err, "failed to create bet")
	}
	return nil
}

// GetByID retrieves a bet by its ID, nil when it does not exist
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}
	return bet, nil
}

// LockByID takes the bet's row lock for the rest of the transaction.
// Waiting longer than lockTimeout fails with a concurrency conflict.
func (r *BetRepository) LockByID(ctx context.Context, id int64) (*entities.Bet, error) {
	if _, err := r.q.Exec(ctx, "SET LOCAL lock_timeout = '"+lockTimeout+"'"); err != nil {
		return nil, fmt.Errorf("failed to set lock timeout: %w", err)
	}

	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1 FOR UPDATE`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("failed to lock bet %d", id))
	}
	return bet, nil
}

// GetByMatchID returns all bets on an external match, oldest first
func (r *BetRepository) GetByMatchID(ctx context.Context, matchID string) ([]*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE match_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets for match %s: %w", matchID, err)
	}
	defer rows.Close()

	bets := make([]*entities.Bet, 0)
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bets: %w", err)
	}
	return bets, nil
}

// Update persists the mutable fields of a bet
func (r *BetRepository) Update(ctx context.Context, bet *entities.Bet) error {
	query := `
		UPDATE bets SET
			status = $2,
			winner = $3,
			contestant1_pool = $4,
			contestant2_pool = $5,
			total_pool = $6,
			disputed = $7,
			dispute_reason = $8,
			updated_at = $9,
			resolved_at = $10
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query,
		bet.ID,
		bet.Status,
		bet.Winner,
		bet.Contestant1Pool,
		bet.Contestant2Pool,
		bet.TotalPool,
		bet.Disputed,
		bet.DisputeReason,
		bet.UpdatedAt,
		bet.ResolvedAt,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update bet %d", bet.ID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", bet.ID)
	}
	return nil
}

// CreateParticipation inserts a pooled stake. A second stake by the same user
// violates participations_bet_user_unique.
func (r *BetRepository) CreateParticipation(ctx context.Context, participation *entities.Participation) error {
	query := `
		INSERT INTO participations (bet_id, user_id, prediction, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		participation.BetID,
		participation.UserID,
		participation.Prediction,
		participation.Amount,
		participation.CreatedAt,
	).Scan(&participation.ID)
	if err != nil {
		return translateError(err, "failed to create participation")
	}
	return nil
}

// GetParticipationsByBet returns all pooled stakes on a bet, oldest first
func (r *BetRepository) GetParticipationsByBet(ctx context.Context, betID int64) ([]*entities.Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM participations WHERE bet_id = $1 ORDER BY id`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participations: %w", err)
	}
	defer rows.Close()

	participations := make([]*entities.Participation, 0)
	for rows.Next() {
		var p entities.Participation
		var payout decimal.NullDecimal
		err := rows.Scan(
			&p.ID,
			&p.BetID,
			&p.UserID,
			&p.Prediction,
			&p.Amount,
			&payout,
			&p.Claimed,
			&p.ClaimedAt,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		p.Payout = fromNullDecimal(payout)
		participations = append(participations, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participations: %w", err)
	}
	return participations, nil
}

// UpdateParticipation persists payout and claim fields
func (r *BetRepository) UpdateParticipation(ctx context.Context, participation *entities.Participation) error {
	query := `
		UPDATE participations SET
			payout = $2,
			claimed = $3,
			claimed_at = $4
		WHERE id = $1
	`

	_, err := r.q.Exec(ctx, query,
		participation.ID,
		toNullDecimal(participation.Payout),
		participation.Claimed,
		participation.ClaimedAt,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update participation %d", participation.ID))
	}
	return nil
}

func scanBet(row pgx.Row) (*entities.Bet, error) {
	var bet entities.Bet
	err := row.Scan(
		&bet.ID,
		&bet.Contest.TournamentID,
		&bet.Contest.TournamentName,
		&bet.Contest.EventID,
		&bet.Contest.EventName,
		&bet.Contest.PhaseID,
		&bet.Contest.MatchID,
		&bet.Contestant1.ID,
		&bet.Contestant1.Name,
		&bet.Contestant2.ID,
		&bet.Contestant2.Name,
		&bet.Status,
		&bet.Winner,
		&bet.Contestant1Pool,
		&bet.Contestant2Pool,
		&bet.TotalPool,
		&bet.MinimumBet,
		&bet.MaximumBet,
		&bet.FeeRate,
		&bet.AllowOffersInProgress,
		&bet.CreatorID,
		&bet.Disputed,
		&bet.DisputeReason,
		&bet.CreatedAt,
		&bet.UpdatedAt,
		&bet.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func fromNullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v := n.Decimal
	return &v
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
