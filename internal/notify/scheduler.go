// Package notify implements the scheduled job that reminds organizers
// and accepted participants about upcoming events via an external
// messenger.
package notify

import (
	"context"
	"io"
	"log/slog"
	"time"

	"eventhub/internal/model"
)

// tolerance absorbs scheduler jitter (cron granularity): an event is
// selected when its start falls within ±tolerance of the target time.
const tolerance = 5 * time.Minute

// Messenger dispatches one formatted text message to an external chat
// handle. The text carries inline HTML emphasis markers that the
// implementation passes through verbatim.
type Messenger interface {
	Send(ctx context.Context, chatID, text string) error
}

// EventSource supplies events starting within an inclusive time range.
type EventSource interface {
	FindStartingBetween(ctx context.Context, start, end time.Time) ([]model.Event, error)
}

// ParticipantSource supplies the participation records of an event.
type ParticipantSource interface {
	ListByEvent(ctx context.Context, eventID string) ([]model.Participation, error)
}

// UserSource resolves user identities to accounts.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Report aggregates the outcome of one scheduler run.
type Report struct {
	EventsProcessed int
	Sent            int
	Failed          int
}

// Scheduler selects events starting around now+lookahead and fans out
// one reminder per eligible recipient. A failed dispatch is counted and
// logged but never aborts the batch; there is no retry within a run and
// no duplicate-send suppression across runs.
type Scheduler struct {
	events       EventSource
	participants ParticipantSource
	users        UserSource
	messenger    Messenger
	log          *slog.Logger
}

// NewScheduler constructs a Scheduler. log may be nil.
func NewScheduler(events EventSource, participants ParticipantSource, users UserSource, messenger Messenger, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		events:       events,
		participants: participants,
		users:        users,
		messenger:    messenger,
		log:          log,
	}
}

// Run executes one notification pass for events starting lookahead from
// now, within the ±5 minute tolerance band.
func (s *Scheduler) Run(ctx context.Context, now time.Time, lookahead time.Duration) (Report, error) {
	target := now.Add(lookahead)
	windowStart := target.Add(-tolerance)
	windowEnd := target.Add(tolerance)

	var report Report

	events, err := s.events.FindStartingBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return report, err
	}
	if len(events) == 0 {
		s.log.Info("no upcoming events in window",
			"window_start", windowStart, "window_end", windowEnd)
		return report, nil
	}

	for i := range events {
		event := &events[i]
		report.EventsProcessed++

		recipients, err := s.recipients(ctx, event)
		if err != nil {
			s.log.Error("resolve recipients", "event_id", event.ID, "error", err)
			continue
		}
		if len(recipients) == 0 {
			s.log.Warn("no linked recipients for event", "event_id", event.ID, "event", event.Name)
			continue
		}

		text := formatReminder(event)
		for _, user := range recipients {
			if err := s.messenger.Send(ctx, user.TelegramID, text); err != nil {
				report.Failed++
				s.log.Error("send reminder",
					"event_id", event.ID, "user_id", user.ID, "error", err)
				continue
			}
			report.Sent++
			s.log.Info("reminder sent", "event_id", event.ID, "user_id", user.ID)
		}
	}

	s.log.Info("notification run complete",
		"events", report.EventsProcessed, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}

// recipients builds the recipient set for an event: the organizer plus
// every participant with status accepted, deduplicated by user ID and
// filtered to users with a linked Telegram account.
func (s *Scheduler) recipients(ctx context.Context, event *model.Event) ([]*model.User, error) {
	seen := make(map[string]bool)
	var out []*model.User

	add := func(userID string) error {
		if seen[userID] {
			return nil
		}
		seen[userID] = true
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			// A vanished account is not worth failing the event over.
			s.log.Warn("skip unresolvable recipient",
				"event_id", event.ID, "user_id", userID, "error", err)
			return nil
		}
		if user.Notifiable() {
			out = append(out, user)
		}
		return nil
	}

	if err := add(event.OwnerID); err != nil {
		return nil, err
	}

	participants, err := s.participants.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range participants {
		if p.Status != model.StatusAccepted {
			continue
		}
		if err := add(p.UserID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
