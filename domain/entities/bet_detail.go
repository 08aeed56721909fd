package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetDetail is a bet loaded together with everything staked on it
type BetDetail struct {
	Bet            *Bet
	Participations []*Participation
	Offers         []*Offer
	Acceptances    []*Acceptance
}

// ParticipationFor returns the user's pooled stake, or nil
func (d *BetDetail) ParticipationFor(userID int64) *Participation {
	for _, p := range d.Participations {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// Offer returns the offer with the given id, or nil
func (d *BetDetail) Offer(offerID int64) *Offer {
	for _, o := range d.Offers {
		if o.ID == offerID {
			return o
		}
	}
	return nil
}

// HasActivity checks if anyone has staked or posted an offer
func (d *BetDetail) HasActivity() bool {
	return len(d.Participations) > 0 || len(d.Offers) > 0
}

// HasClaims checks if any payout on the bet has been paid out
func (d *BetDetail) HasClaims() bool {
	for _, p := range d.Participations {
		if p.Claimed {
			return true
		}
	}
	for _, a := range d.Acceptances {
		if a.HasClaims() {
			return true
		}
	}
	return false
}

// IsParticipant checks if the user has any stake, offer or acceptance on the bet
func (d *BetDetail) IsParticipant(userID int64) bool {
	if d.ParticipationFor(userID) != nil {
		return true
	}
	for _, o := range d.Offers {
		if o.CreatorID == userID {
			return true
		}
	}
	for _, a := range d.Acceptances {
		if a.AcceptorID == userID {
			return true
		}
	}
	return false
}

// HoldingsOf collects every settled or unsettled position the user holds
func (d *BetDetail) HoldingsOf(userID int64) Holdings {
	h := Holdings{Participation: d.ParticipationFor(userID)}
	for _, a := range d.Acceptances {
		if o := d.Offer(a.OfferID); o != nil && o.CreatorID == userID {
			h.AsCreator = append(h.AsCreator, a)
		}
		if a.AcceptorID == userID {
			h.AsAcceptor = append(h.AsAcceptor, a)
		}
	}
	return h
}

// UnclaimedByUser sums the payouts still owed to each user
func (d *BetDetail) UnclaimedByUser() map[int64]decimal.Decimal {
	owed := make(map[int64]decimal.Decimal)
	for _, p := range d.Participations {
		if p.Payout != nil && !p.Claimed {
			owed[p.UserID] = owed[p.UserID].Add(*p.Payout)
		}
	}
	for _, a := range d.Acceptances {
		if o := d.Offer(a.OfferID); o != nil && a.CreatorPayout != nil && !a.CreatorClaimed {
			owed[o.CreatorID] = owed[o.CreatorID].Add(*a.CreatorPayout)
		}
		if a.AcceptorPayout != nil && !a.AcceptorClaimed {
			owed[a.AcceptorID] = owed[a.AcceptorID].Add(*a.AcceptorPayout)
		}
	}
	return owed
}

// Holdings are the claimable positions of one user on one bet
type Holdings struct {
	Participation *Participation
	AsCreator     []*Acceptance
	AsAcceptor    []*Acceptance
}

// IsEmpty checks if the user holds nothing on the bet
func (h Holdings) IsEmpty() bool {
	return h.Participation == nil && len(h.AsCreator) == 0 && len(h.AsAcceptor) == 0
}

// AllClaimed checks if every position has been paid already
func (h Holdings) AllClaimed() bool {
	if h.Participation != nil && !h.Participation.Claimed {
		return false
	}
	for _, a := range h.AsCreator {
		if !a.CreatorClaimed {
			return false
		}
	}
	for _, a := range h.AsAcceptor {
		if !a.AcceptorClaimed {
			return false
		}
	}
	return true
}

// UnclaimedTotal sums the payouts still owed
func (h Holdings) UnclaimedTotal() decimal.Decimal {
	total := decimal.Zero
	if h.Participation != nil {
		total = total.Add(h.Participation.UnclaimedPayout())
	}
	for _, a := range h.AsCreator {
		if !a.CreatorClaimed && a.CreatorPayout != nil {
			total = total.Add(*a.CreatorPayout)
		}
	}
	for _, a := range h.AsAcceptor {
		if !a.AcceptorClaimed && a.AcceptorPayout != nil {
			total = total.Add(*a.AcceptorPayout)
		}
	}
	return total
}

// MarkClaimed flags every unclaimed position as paid and returns the claim record
func (h Holdings) MarkClaimed(now time.Time) ClaimRecord {
	var rec ClaimRecord
	if p := h.Participation; p != nil && !p.Claimed {
		p.Claimed = true
		p.ClaimedAt = &now
		rec.ParticipationID = p.ID
	}
	for _, a := range h.AsCreator {
		if !a.CreatorClaimed {
			a.CreatorClaimed = true
			rec.CreatorAcceptanceIDs = append(rec.CreatorAcceptanceIDs, a.ID)
		}
	}
	for _, a := range h.AsAcceptor {
		if !a.AcceptorClaimed {
			a.AcceptorClaimed = true
			rec.AcceptorAcceptanceIDs = append(rec.AcceptorAcceptanceIDs, a.ID)
		}
	}
	return rec
}

// ClaimRecord names the positions flipped by one claim, so it can be reverted
type ClaimRecord struct {
	ParticipationID       int64 // zero when the participation was not part of the claim
	CreatorAcceptanceIDs  []int64
	AcceptorAcceptanceIDs []int64
}

// Revert clears the claimed flags recorded in rec on the detail's positions
func (d *BetDetail) Revert(rec ClaimRecord) {
	if rec.ParticipationID != 0 {
		for _, p := range d.Participations {
			if p.ID == rec.ParticipationID {
				p.Claimed = false
				p.ClaimedAt = nil
			}
		}
	}
	for _, a := range d.Acceptances {
		for _, id := range rec.CreatorAcceptanceIDs {
			if a.ID == id {
				a.CreatorClaimed = false
			}
		}
		for _, id := range rec.AcceptorAcceptanceIDs {
			if a.ID == id {
				a.AcceptorClaimed = false
			}
		}
	}
}

// Market is the public view of a bet's pools and live odds
type Market struct {
	BetID           int64
	Status          BetStatus
	Contestant1Pool decimal.Decimal
	Contestant2Pool decimal.Decimal
	TotalPool       decimal.Decimal
	Contestant1Odds *decimal.Decimal // nil until the side has stake
	Contestant2Odds *decimal.Decimal
}

// MarketOf builds the market view of a bet
func MarketOf(b *Bet) *Market {
	m := &Market{
		BetID:           b.ID,
		Status:          b.Status,
		Contestant1Pool: b.Contestant1Pool,
		Contestant2Pool: b.Contestant2Pool,
		TotalPool:       b.TotalPool,
	}
	if odds, ok := b.Odds(SideContestant1); ok {
		m.Contestant1Odds = &odds
	}
	if odds, ok := b.Odds(SideContestant2); ok {
		m.Contestant2Odds = &odds
	}
	return m
}
