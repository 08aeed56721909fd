package dto

import (
	"time"

	"gambler/wagering/domain/entities"
)

// ContestStartedDTO represents an external contest going live
type ContestStartedDTO struct {
	MatchID   string
	EventTime time.Time
}

// ContestFinishedDTO represents an external contest with a final result
type ContestFinishedDTO struct {
	MatchID   string
	Winner    entities.Winner
	EventTime time.Time
}
