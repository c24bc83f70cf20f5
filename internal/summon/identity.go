package summon

import (
	"context"
	"fmt"
	"strconv"
)

const (
	FallbackFirstName      = "Nouveau"
	FallbackLastNamePrefix = "Soldat_"
)

type identity struct {
	FirstName   string
	LastName    string
	Nationality string
	Unique      bool
}

// drawIdentity picks a nationality, then draws name pairs until one is free
// or the attempt budget runs out. Exhaustion keeps the last pair: uniqueness
// is best-effort.
func (e *Engine) drawIdentity(ctx context.Context) (identity, error) {
	nats := e.cfg.Nationalities
	id := identity{Nationality: nats[PickIndex(e.rng, len(nats))]}

	attempts := e.cfg.MaxNameAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		first, err := e.names.DrawFirstName(ctx, id.Nationality)
		if err != nil {
			return identity{}, fmt.Errorf("%w: draw first name: %w", ErrCollaboratorUnavailable, err)
		}
		if first == "" {
			first = FallbackFirstName
		}
		last, err := e.names.DrawLastName(ctx, id.Nationality)
		if err != nil {
			return identity{}, fmt.Errorf("%w: draw last name: %w", ErrCollaboratorUnavailable, err)
		}
		if last == "" {
			last = FallbackLastNamePrefix + strconv.FormatInt(e.Now().UnixNano(), 36)
		}
		id.FirstName, id.LastName = first, last

		exists, err := e.soldiers.SoldierExists(ctx, first, last)
		if err != nil {
			return identity{}, fmt.Errorf("%w: check name: %w", ErrCollaboratorUnavailable, err)
		}
		if !exists {
			id.Unique = true
			return id, nil
		}
		e.Logger.Debug("summon name collision", "first_name", first, "last_name", last, "attempt", attempt)
	}

	e.Logger.Warn("summon name attempts exhausted, keeping duplicate",
		"first_name", id.FirstName, "last_name", id.LastName, "attempts", attempts)
	return id, nil
}
