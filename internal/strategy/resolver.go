package strategy

import "time"

// Resolver selects the subset of strategies eligible for execution.
type Resolver struct {
	db *Database
}

func NewResolver(db *Database) *Resolver {
	return &Resolver{db: db}
}

// DueSet returns the strategies due at now, in store order. The store
// narrows to active, started strategies; the interval check happens
// here against the fixed durations.
func (r *Resolver) DueSet(now time.Time) ([]Strategy, error) {
	candidates, err := r.db.ActiveStarted(now)
	if err != nil {
		return nil, err
	}

	due := make([]Strategy, 0, len(candidates))
	for _, s := range candidates {
		if s.IsDue(now) {
			due = append(due, s)
		}
	}
	return due, nil
}
