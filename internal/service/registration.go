package service

import (
	"context"
	"fmt"
)

// RegisterForConference reserves a seat for the caller.
func (s *Service) RegisterForConference(ctx context.Context, key string) (bool, error) {
	return s.conferenceRegistration(ctx, key, true)
}

// UnregisterFromConference releases the caller's seat.  It reports false
// when the caller was not registered.
func (s *Service) UnregisterFromConference(ctx context.Context, key string) (bool, error) {
	return s.conferenceRegistration(ctx, key, false)
}

// conferenceRegistration locks the caller's profile and then the conference
// in one transaction, so the registration list and the seat count move
// together and concurrent registrations cannot oversell seats.
func (s *Service) conferenceRegistration(ctx context.Context, key string, register bool) (bool, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return false, err
	}
	if _, err := s.profileFor(ctx, id); err != nil {
		return false, err
	}

	var changed bool
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		prof, err := s.store.GetProfileForUpdate(ctx, id.UserID)
		if err != nil {
			return fmt.Errorf("lock profile: %w", err)
		}
		conf, err := s.store.GetConferenceForUpdate(ctx, key)
		if err != nil {
			if isNotFound(err) {
				return errorf(ErrNotFound, "No conference found with key: %s", key)
			}
			return fmt.Errorf("lock conference: %w", err)
		}

		attending := prof.IsAttending(key)
		if register {
			if attending {
				return errorf(ErrConflict, "You have already registered for this conference")
			}
			if conf.SeatsAvailable <= 0 {
				return errorf(ErrConflict, "There are no seats available.")
			}
			if err := s.store.AddRegistration(ctx, id.UserID, key); err != nil {
				return fmt.Errorf("add registration: %w", err)
			}
			if err := s.store.SetSeatsAvailable(ctx, key, conf.SeatsAvailable-1); err != nil {
				return fmt.Errorf("decrement seats: %w", err)
			}
			changed = true
			return nil
		}

		if !attending {
			return nil
		}
		if err := s.store.RemoveRegistration(ctx, id.UserID, key); err != nil {
			return fmt.Errorf("remove registration: %w", err)
		}
		if err := s.store.SetSeatsAvailable(ctx, key, conf.SeatsAvailable+1); err != nil {
			return fmt.Errorf("increment seats: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}
