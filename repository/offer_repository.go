package repository

import (
	"context"
	"fmt"

	"gambler/wagering/database"
	"gambler/wagering/domain/entities"
	"gambler/wagering/domain/interfaces"

	"github.com/shopspring/decimal"
)

// OfferRepository implements order-book data access
type OfferRepository struct {
	q Queryable
}

// NewOfferRepository creates an offer repository on the pool
func NewOfferRepository(db *database.DB) *OfferRepository {
	return &OfferRepository{q: db.Pool}
}

func newOfferRepositoryWithTx(tx Queryable) interfaces.OfferRepository {
	return &OfferRepository{q: tx}
}

// Create inserts a new offer
func (r *OfferRepository) Create(ctx context.Context, offer *entities.Offer) error {
	query := `
		INSERT INTO offers (
			bet_id, creator_id, prediction, stake_amount, requested_odds,
			remaining_amount, refunded_amount, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		offer.BetID,
		offer.CreatorID,
		offer.Prediction,
		offer.StakeAmount,
		offer.RequestedOdds,
		offer.RemainingAmount,
		offer.RefundedAmount,
		offer.Status,
		offer.CreatedAt,
		offer.UpdatedAt,
	).Scan(&offer.ID)
	if err != nil {
		return translateError(err, "failed to create offer")
	}
	return nil
}

// GetByBet returns every offer on a bet, oldest first
func (r *OfferRepository) GetByBet(ctx context.Context, betID int64) ([]*entities.Offer, error) {
	query := `
		SELECT id, bet_id, creator_id, prediction, stake_amount, requested_odds,
			remaining_amount, refunded_amount, status, created_at, updated_at
		FROM offers
		WHERE bet_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	offers := make([]*entities.Offer, 0)
	for rows.Next() {
		var o entities.Offer
		err := rows.Scan(
			&o.ID,
			&o.BetID,
			&o.CreatorID,
			&o.Prediction,
			&o.StakeAmount,
			&o.RequestedOdds,
			&o.RemainingAmount,
			&o.RefundedAmount,
			&o.Status,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}
	return offers, nil
}

// Update persists the mutable fields of an offer
func (r *OfferRepository) Update(ctx context.Context, offer *entities.Offer) error {
	query := `
		UPDATE offers SET
			remaining_amount = $2,
			refunded_amount = $3,
			status = $4,
			updated_at = $5
		WHERE id = $1
	`

	_, err := r.q.Exec(ctx, query,
		offer.ID,
		offer.RemainingAmount,
		offer.RefundedAmount,
		offer.Status,
		offer.UpdatedAt,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update offer %d", offer.ID))
	}
	return nil
}

// CreateAcceptance inserts a match of an offer
func (r *OfferRepository) CreateAcceptance(ctx context.Context, acceptance *entities.Acceptance) error {
	query := `
		INSERT INTO acceptances (
			offer_id, bet_id, acceptor_id, accept_amount, counter_stake, odds, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		acceptance.OfferID,
		acceptance.BetID,
		acceptance.AcceptorID,
		acceptance.AcceptAmount,
		acceptance.CounterStake,
		acceptance.Odds,
		acceptance.CreatedAt,
	).Scan(&acceptance.ID)
	if err != nil {
		return translateError(err, "failed to create acceptance")
	}
	return nil
}

// GetAcceptancesByBet returns every acceptance on a bet, oldest first
func (r *OfferRepository) GetAcceptancesByBet(ctx context.Context, betID int64) ([]*entities.Acceptance, error) {
	query := `
		SELECT id, offer_id, bet_id, acceptor_id, accept_amount, counter_stake, odds,
			creator_payout, acceptor_payout, creator_claimed, acceptor_claimed, created_at
		FROM acceptances
		WHERE bet_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query acceptances: %w", err)
	}
	defer rows.Close()

	acceptances := make([]*entities.Acceptance, 0)
	for rows.Next() {
		var a entities.Acceptance
		var creatorPayout, acceptorPayout decimal.NullDecimal
		err := rows.Scan(
			&a.ID,
			&a.OfferID,
			&a.BetID,
			&a.AcceptorID,
			&a.AcceptAmount,
			&a.CounterStake,
			&a.Odds,
			&creatorPayout,
			&acceptorPayout,
			&a.CreatorClaimed,
			&a.AcceptorClaimed,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan acceptance: %w", err)
		}
		a.CreatorPayout = fromNullDecimal(creatorPayout)
		a.AcceptorPayout = fromNullDecimal(acceptorPayout)
		acceptances = append(acceptances, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating acceptances: %w", err)
	}
	return acceptances, nil
}

// UpdateAcceptance persists payout and claim fields
func (r *OfferRepository) UpdateAcceptance(ctx context.Context, acceptance *entities.Acceptance) error {
	query := `
		UPDATE acceptances SET
			creator_payout = $2,
			acceptor_payout = $3,
			creator_claimed = $4,
			acceptor_claimed = $5
		WHERE id = $1
	`

	_, err := r.q.Exec(ctx, query,
		acceptance.ID,
		toNullDecimal(acceptance.CreatorPayout),
		toNullDecimal(acceptance.AcceptorPayout),
		acceptance.CreatorClaimed,
		acceptance.AcceptorClaimed,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update acceptance %d", acceptance.ID))
	}
	return nil
}
