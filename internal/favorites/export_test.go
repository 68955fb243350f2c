package favorites

import "time"

// SetClock replaces the store's clock.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// SetIDGenerator replaces the manual id generator.
func (s *Store) SetIDGenerator(f func() string) { s.newID = f }
