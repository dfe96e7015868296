package application

import "expvar"

// Process counters published under /debug/vars when debug metrics are enabled.
var (
	metricLogins         = expvar.NewMap("auth_logins")
	metricRefreshes      = expvar.NewMap("auth_refreshes")
	metricPasswordResets = expvar.NewInt("auth_password_resets")
	metricPasswordSets   = expvar.NewInt("auth_password_sets")
	metricEmailsSent     = expvar.NewMap("emails_sent")
	metricUsersCreated   = expvar.NewInt("users_created")
)

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
