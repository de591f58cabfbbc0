package services

import (
	"context"
	"log/slog"

	"github.com/aapokoiv/nutrition-tracker/models"
)

const (
	KindIntakeUpdated = "intake.updated"
	KindTargetHit     = "target.hit"
)

type Broadcaster interface {
	Broadcast(userID uint, payload any)
}

type IntakeMessage struct {
	Kind   string `json:"kind"`
	Intake Intake `json:"intake"`
	Target int    `json:"target,omitempty"`
}

// IntakeNotifier pushes the user's daily intake after each change to their
// eaten history.
type IntakeNotifier struct {
	analytics *AnalyticsService
	out       Broadcaster
	log       *slog.Logger
}

func NewIntakeNotifier(analytics *AnalyticsService, out Broadcaster, log *slog.Logger) *IntakeNotifier {
	return &IntakeNotifier{analytics: analytics, out: out, log: log}
}

// EatenRecorded sends intake.updated, and target.hit when e moved today's
// protein from below the user's target to at or above it.
func (n *IntakeNotifier) EatenRecorded(ctx context.Context, userID uint, e *models.Eaten) {
	intake, ok := n.publish(ctx, userID)
	if !ok || e == nil {
		return
	}
	if dayKey(e.Time, n.analytics.loc) != dayKey(n.analytics.now(), n.analytics.loc) {
		return
	}
	user, err := n.analytics.user(ctx, userID)
	if err != nil {
		n.log.WarnContext(ctx, "intake notify: user lookup failed", "err", err)
		return
	}
	target := float64(user.ProteinTarget)
	before := intake.TotalProtein - e.EatenProtein
	if before < target && intake.TotalProtein >= target {
		n.out.Broadcast(userID, IntakeMessage{Kind: KindTargetHit, Intake: intake, Target: user.ProteinTarget})
	}
}

func (n *IntakeNotifier) EatenDeleted(ctx context.Context, userID uint) {
	n.publish(ctx, userID)
}

func (n *IntakeNotifier) publish(ctx context.Context, userID uint) (Intake, bool) {
	intake, err := n.analytics.DailyIntake(ctx, userID, n.analytics.Today())
	if err != nil {
		n.log.WarnContext(ctx, "intake notify: daily intake failed", "err", err)
		return Intake{}, false
	}
	n.out.Broadcast(userID, IntakeMessage{Kind: KindIntakeUpdated, Intake: intake})
	return intake, true
}
