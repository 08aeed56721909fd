package entities

import "time"

// AuditAction names a forced or administrative action on a bet
type AuditAction string

const (
	AuditActionStart           AuditAction = "start"
	AuditActionDeclareWinner   AuditAction = "declare_winner"
	AuditActionCancel          AuditAction = "cancel"
	AuditActionRaiseDispute    AuditAction = "raise_dispute"
	AuditActionRedeclareWinner AuditAction = "resolve_dispute_redeclare"
	AuditActionCancelByDispute AuditAction = "resolve_dispute_cancel"
)

// AuditEntry records who forced a transition and why
type AuditEntry struct {
	ID        int64
	BetID     int64
	ActorID   int64
	Action    AuditAction
	Reason    string
	CreatedAt time.Time
}

// ResolutionAction is how an administrator settles a dispute
type ResolutionAction string

const (
	ResolutionRedeclare ResolutionAction = "redeclare"
	ResolutionCancel    ResolutionAction = "cancel"
)

// DisputeResolution is the administrative outcome of a dispute
type DisputeResolution struct {
	Action ResolutionAction
	Winner Winner // only for ResolutionRedeclare
	Reason string
}

// Redeclare builds a resolution that settles the bet with winner
func Redeclare(winner Winner, reason string) DisputeResolution {
	return DisputeResolution{Action: ResolutionRedeclare, Winner: winner, Reason: reason}
}

// CancelResolution builds a resolution that refunds everything
func CancelResolution(reason string) DisputeResolution {
	return DisputeResolution{Action: ResolutionCancel, Reason: reason}
}
