package main

import (
	"context"
	"time"
)

const sessionCleanerInterval = 5 * time.Minute

// startSessionCleaner drops display sessions nobody has touched for the
// configured idle time.
func (app *application) startSessionCleaner(ctx context.Context) {
	maxIdle := app.cfg.SessionIdle()
	if maxIdle <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(sessionCleanerInterval)
		defer ticker.Stop()

		run := func() {
			if removed := app.sessions.Sweep(maxIdle); removed > 0 {
				app.log.Infof("session cleaner: removed %d idle sessions", removed)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}
