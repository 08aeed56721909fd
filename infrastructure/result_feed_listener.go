package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gambler/wagering/application"
	"gambler/wagering/application/dto"
	"gambler/wagering/domain/entities"

	log "github.com/sirupsen/logrus"
)

// Contest statuses reported by the result feed
const (
	ContestStatusInProgress = "in_progress"
	ContestStatusFinished   = "finished"
	ContestStatusUnknown    = "unknown"
)

// contestResultMessage is the JSON body published on contests.results.<contestID>
type contestResultMessage struct {
	ContestID string     `json:"contest_id"`
	Status    string     `json:"status"`
	Winner    string     `json:"winner,omitempty"`
	EventTime *time.Time `json:"event_time,omitempty"`
}

// ResultFeedListener decodes contest results and converts them to application DTOs
type ResultFeedListener struct {
	handler application.ResultFeedHandler
	now     func() time.Time
}

// NewResultFeedListener creates a new result feed listener
func NewResultFeedListener(handler application.ResultFeedHandler) *ResultFeedListener {
	return &ResultFeedListener{
		handler: handler,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// HandleContestResult processes one contest result message
func (l *ResultFeedListener) HandleContestResult(ctx context.Context, data []byte) error {
	var msg contestResultMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		// malformed messages would fail on every redelivery
		log.WithError(err).WithField("size", len(data)).Error("Dropping undecodable contest result")
		return nil
	}
	if msg.ContestID == "" {
		log.WithField("status", msg.Status).Warn("Dropping contest result without contest id")
		return nil
	}

	eventTime := l.now()
	if msg.EventTime != nil {
		eventTime = *msg.EventTime
	}

	log.WithFields(log.Fields{
		"contestID": msg.ContestID,
		"status":    msg.Status,
		"winner":    msg.Winner,
	}).Debug("Processing contest result")

	switch msg.Status {
	case ContestStatusInProgress:
		return l.handler.HandleContestStarted(ctx, dto.ContestStartedDTO{
			MatchID:   msg.ContestID,
			EventTime: eventTime,
		})
	case ContestStatusFinished:
		winner, err := parseWinner(msg.Winner)
		if err != nil {
			log.WithError(err).WithField("contestID", msg.ContestID).Warn("Dropping finished contest with invalid winner")
			return nil
		}
		return l.handler.HandleContestFinished(ctx, dto.ContestFinishedDTO{
			MatchID:   msg.ContestID,
			Winner:    winner,
			EventTime: eventTime,
		})
	default:
		log.WithFields(log.Fields{
			"contestID": msg.ContestID,
			"status":    msg.Status,
		}).Debug("Ignoring contest status")
		return nil
	}
}

func parseWinner(raw string) (entities.Winner, error) {
	winner := entities.Winner(raw)
	if !winner.IsDeclarable() {
		return entities.WinnerNone, fmt.Errorf("unknown winner %q", raw)
	}
	return winner, nil
}
