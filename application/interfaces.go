package application

import (
	"context"

	"gambler/wagering/application/dto"
)

// ResultFeedHandler defines the interface for handling contest result events.
// This is implemented by the application layer and called by the infrastructure layer.
type ResultFeedHandler interface {
	// HandleContestStarted starts every open bet on the contest
	HandleContestStarted(ctx context.Context, started dto.ContestStartedDTO) error

	// HandleContestFinished declares the winner of every live bet on the contest
	HandleContestFinished(ctx context.Context, finished dto.ContestFinishedDTO) error
}
