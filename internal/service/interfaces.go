// Package service defines option types shared between the client, the retry
// controller and the report orchestrator.
package service

import (
	"time"
)

// DefaultRetryDelay is the pause between a forced re-login and the retried call.
const DefaultRetryDelay = 2 * time.Second

// DefaultTransactionLimit caps the number of transactions requested per run.
const DefaultTransactionLimit = 10000

// RetryOptions configures the unauthorized-retry behavior.
// A zero Delay retries immediately.
type RetryOptions struct {
	Delay time.Duration
}

// TransactionQuery bounds a transaction fetch.
type TransactionQuery struct {
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}

// YearToDate returns the query covering January 1 of now's year through now.
func YearToDate(now time.Time, limit int) TransactionQuery {
	return TransactionQuery{
		StartDate: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
		EndDate:   now,
		Limit:     limit,
	}
}
