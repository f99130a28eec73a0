// Package auth gates the interactive surfaces behind an authenticated user
// and keeps the tier/quota snapshot current.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/config"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

// PollInterval is the fixed cadence of the tier/quota poll.
const PollInterval = 60 * time.Second

// Client is the slice of the backend API the gate needs. *api.Client
// satisfies it.
type Client interface {
	Login(ctx context.Context, email string) (model.User, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (model.User, bool, error)
	TierInfo(ctx context.Context) (model.TierInfo, error)
}

// Gate owns the authenticated-user context and the single tier snapshot that
// every display surface renders from. Because there is only one snapshot, the
// primary and compact quota displays cannot drift apart.
type Gate struct {
	client       Client
	identityPath string

	user          model.User
	authenticated bool

	tier      model.TierInfo
	tierKnown bool
	pollToken uint64
}

// NewGate creates a gate over the given API client. identityPath is where the
// remembered sign-in email lives.
func NewGate(client Client, identityPath string) *Gate {
	return &Gate{client: client, identityPath: identityPath}
}

// Authenticated reports whether a user is signed in.
func (g *Gate) Authenticated() bool {
	return g.authenticated
}

// User returns the signed-in user.
func (g *Gate) User() (model.User, bool) {
	return g.user, g.authenticated
}

// Tier returns the latest quota snapshot.
func (g *Gate) Tier() (model.TierInfo, bool) {
	return g.tier, g.tierKnown
}

// SilentLogin tries to restore a session without user interaction: first via
// the backend session cookie, then by re-submitting the remembered email.
// A false result without error means credentials must be entered explicitly.
func (g *Gate) SilentLogin(ctx context.Context) (bool, error) {
	user, ok, err := g.client.Status(ctx)
	if err == nil && ok {
		g.user = user
		g.authenticated = true
		return true, nil
	}
	email, err := config.LoadIdentity(g.identityPath)
	if err != nil {
		return false, err
	}
	if email == "" {
		return false, nil
	}
	user, err = g.client.Login(ctx, email)
	if err != nil {
		return false, err
	}
	g.user = user
	g.authenticated = true
	return true, nil
}

// Login authenticates explicitly and remembers the identity for next time.
func (g *Gate) Login(ctx context.Context, email string) (model.User, error) {
	user, err := g.client.Login(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	g.user = user
	g.authenticated = true
	if err := config.SaveIdentity(g.identityPath, email); err != nil {
		return user, fmt.Errorf("signed in, but %w", err)
	}
	return user, nil
}

// Logout ends the backend session, forgets the identity, and drops all
// user-scoped state.
func (g *Gate) Logout(ctx context.Context) error {
	logoutErr := g.client.Logout(ctx)
	g.user = model.User{}
	g.authenticated = false
	g.tier = model.TierInfo{}
	g.tierKnown = false
	g.pollToken++
	if err := config.ClearIdentity(g.identityPath); err != nil {
		return err
	}
	return logoutErr
}

// BeginTierPoll starts one poll cycle and returns the token its completion
// must echo. Polls started before a logout are invalidated by it.
func (g *Gate) BeginTierPoll() uint64 {
	g.pollToken++
	return g.pollToken
}

// CompleteTierPoll applies a poll result. Stale tokens and results arriving
// after logout are dropped.
func (g *Gate) CompleteTierPoll(token uint64, tier model.TierInfo, err error) {
	if token != g.pollToken || !g.authenticated || err != nil {
		return
	}
	g.tier = tier
	g.tierKnown = true
}

// TierLine renders the quota for the primary surface.
func (g *Gate) TierLine() string {
	if !g.tierKnown {
		return ""
	}
	return fmt.Sprintf("Tier %s — %d sessions left, resets in %s",
		g.tier.Tier, g.tier.RemainingSessions, formatReset(g.tier.ResetInSeconds))
}

// TierLineCompact renders the quota for the compact surface. Values always
// match TierLine because both read the same snapshot.
func (g *Gate) TierLineCompact() string {
	if !g.tierKnown {
		return ""
	}
	return fmt.Sprintf("%s · %d left · %s", g.tier.Tier, g.tier.RemainingSessions, formatReset(g.tier.ResetInSeconds))
}

func formatReset(seconds int64) string {
	if seconds <= 0 {
		return "now"
	}
	d := time.Duration(seconds) * time.Second
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}
