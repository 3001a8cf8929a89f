// Package views wires the per-view query controllers to the API client and
// carries out the mutate-then-refresh fan-out after each write action.
package views

import (
	"finsight/internal/session"
)

// Route names the navigable views.
type Route string

const (
	RouteLogin         Route = "login"
	RouteRegister      Route = "register"
	RouteDashboard     Route = "dashboard"
	RouteTransactions  Route = "transactions"
	RouteFraudAlerts   Route = "fraud-alerts"
	RouteSubscriptions Route = "subscriptions"
)

// Guard gates protected views behind an active session. It is a pure
// predicate over current session state, re-evaluated on every navigation:
// a logout immediately blocks further protected navigation.
type Guard struct {
	sessions *session.Store
}

func NewGuard(sessions *session.Store) Guard {
	return Guard{sessions: sessions}
}

// Allow reports whether navigation to the route is permitted right now.
func (g Guard) Allow(r Route) bool {
	switch r {
	case RouteLogin, RouteRegister:
		return true
	default:
		return g.sessions.Authenticated()
	}
}

// Resolve returns the route navigation actually lands on: the requested one
// when permitted, otherwise the login view.
func (g Guard) Resolve(r Route) Route {
	if g.Allow(r) {
		return r
	}
	return RouteLogin
}
