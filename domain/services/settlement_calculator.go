package services

import (
	"gambler/wagering/domain/entities"

	"github.com/shopspring/decimal"
)

// AcceptancePayout is the settled outcome of both sides of one acceptance
type AcceptancePayout struct {
	Creator  decimal.Decimal
	Acceptor decimal.Decimal
}

// Settlement is the computed outcome of a bet for a declared winner
type Settlement struct {
	Winner entities.Winner

	// PoolRefunded is set when the pool is returned at face value,
	// either because the bet is void or nobody backed the winning side
	PoolRefunded bool

	Participations map[int64]decimal.Decimal  // participation ID -> payout
	Acceptances    map[int64]AcceptancePayout // acceptance ID -> payouts
	OfferRefunds   map[int64]decimal.Decimal  // offer ID -> unmatched remainder

	TotalEscrow decimal.Decimal // everything held for the bet, refunds excluded
	TotalPaid   decimal.Decimal // sum of payouts
	FeeResidual decimal.Decimal // TotalEscrow - TotalPaid, truncation dust included
}

// SettlementCalculator computes payouts. It performs no I/O.
type SettlementCalculator struct {
	scale int32
}

// NewSettlementCalculator creates a calculator truncating to scale decimal places
func NewSettlementCalculator(scale int32) *SettlementCalculator {
	return &SettlementCalculator{scale: scale}
}

// Settle computes every payout of the bet for winner using the bet's locked fee rate
func (c *SettlementCalculator) Settle(detail *entities.BetDetail, winner entities.Winner) *Settlement {
	bet := detail.Bet
	s := &Settlement{
		Winner:         winner,
		Participations: make(map[int64]decimal.Decimal, len(detail.Participations)),
		Acceptances:    make(map[int64]AcceptancePayout, len(detail.Acceptances)),
		OfferRefunds:   make(map[int64]decimal.Decimal),
		TotalEscrow:    bet.TotalPool,
		TotalPaid:      decimal.Zero,
	}

	keep := decimal.NewFromInt(1).Sub(bet.FeeRate)
	winSide, decided := winner.Side()

	winningPool := decimal.Zero
	if decided {
		winningPool = bet.SidePool(winSide)
	}
	s.PoolRefunded = !decided || !winningPool.IsPositive()

	for _, p := range detail.Participations {
		var payout decimal.Decimal
		switch {
		case s.PoolRefunded:
			payout = p.Amount
		case p.Prediction == winSide:
			payout = c.truncDiv(p.Amount.Mul(bet.TotalPool).Mul(keep), winningPool)
		default:
			payout = decimal.Zero
		}
		s.Participations[p.ID] = payout
		s.TotalPaid = s.TotalPaid.Add(payout)
	}

	for _, a := range detail.Acceptances {
		offer := detail.Offer(a.OfferID)
		s.TotalEscrow = s.TotalEscrow.Add(a.AcceptAmount).Add(a.CounterStake)

		var payout AcceptancePayout
		switch {
		case !decided || offer == nil:
			payout = AcceptancePayout{Creator: a.AcceptAmount, Acceptor: a.CounterStake}
		case offer.Prediction == winSide:
			payout = AcceptancePayout{
				Creator:  a.AcceptAmount.Add(entities.Truncate(a.CounterStake.Mul(keep), c.scale)),
				Acceptor: decimal.Zero,
			}
		default:
			payout = AcceptancePayout{
				Creator:  decimal.Zero,
				Acceptor: a.CounterStake.Add(entities.Truncate(a.AcceptAmount.Mul(keep), c.scale)),
			}
		}
		s.Acceptances[a.ID] = payout
		s.TotalPaid = s.TotalPaid.Add(payout.Creator).Add(payout.Acceptor)
	}

	for _, o := range detail.Offers {
		if o.IsAcceptable() && o.RemainingAmount.IsPositive() {
			s.OfferRefunds[o.ID] = o.RemainingAmount
		}
	}

	s.FeeResidual = s.TotalEscrow.Sub(s.TotalPaid)
	return s
}

// Refunds computes the face-value refund of every position, used on cancellation
func (c *SettlementCalculator) Refunds(detail *entities.BetDetail) *Settlement {
	return c.Settle(detail, entities.WinnerVoid)
}

// truncDiv divides and truncates toward zero at the calculator's scale
func (c *SettlementCalculator) truncDiv(numerator, denominator decimal.Decimal) decimal.Decimal {
	q, _ := numerator.QuoRem(denominator, c.scale)
	return q
}
