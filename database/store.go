// Package database persists saved trips. The generation pipeline never touches it.
package database

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for trips that do not exist or belong to another user.
var ErrNotFound = errors.New("trip not found")

type Trip struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TripStore is scoped by user: callers pass the authenticated subject on every operation.
type TripStore interface {
	// Create assigns ID and CreatedAt and returns the stored trip.
	Create(ctx context.Context, trip Trip) (Trip, error)
	// ListByUser returns the user's trips, newest first.
	ListByUser(ctx context.Context, userID string) ([]Trip, error)
	Delete(ctx context.Context, id, userID string) error
	Ping(ctx context.Context) error
}
