package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/conference-central/internal/auth"
	"github.com/iliyamo/conference-central/internal/model"
)

// ProfileInput holds the editable profile fields.  Empty means unchanged.
type ProfileInput struct {
	DisplayName  string
	TeeShirtSize string
}

// GetProfile returns the caller's profile, creating it on first access.
func (s *Service) GetProfile(ctx context.Context) (*model.Profile, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return s.profileFor(ctx, id)
}

// SaveProfile updates the caller's display name and tee shirt size.
func (s *Service) SaveProfile(ctx context.Context, in ProfileInput) (*model.Profile, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	var size model.TeeShirtSize
	if in.TeeShirtSize != "" {
		size, err = model.ParseTeeShirtSize(in.TeeShirtSize)
		if err != nil {
			return nil, errorf(ErrValidation, "Unknown teeShirtSize: %s", in.TeeShirtSize)
		}
	}
	if _, err := s.profileFor(ctx, id); err != nil {
		return nil, err
	}

	var saved *model.Profile
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		prof, err := s.store.GetProfileForUpdate(ctx, id.UserID)
		if err != nil {
			return fmt.Errorf("lock profile: %w", err)
		}
		if name := strings.TrimSpace(in.DisplayName); name != "" {
			prof.DisplayName = name
		}
		if size != "" {
			prof.TeeShirtSize = size
		}
		if err := s.store.UpdateProfile(ctx, prof); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		saved = prof
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// profileFor returns the profile of id, creating it with defaults drawn from
// the identity when it does not exist yet.
func (s *Service) profileFor(ctx context.Context, id auth.Identity) (*model.Profile, error) {
	prof, err := s.store.GetProfile(ctx, id.UserID)
	if err == nil {
		return prof, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	prof = &model.Profile{
		UserID:       id.UserID,
		DisplayName:  id.Nickname(),
		MainEmail:    id.Email,
		TeeShirtSize: model.TeeShirtNotSpecified,
	}
	// A concurrent first request may have created it already; CreateProfile
	// ignores that and the re-read returns whichever row won.
	if err := s.store.CreateProfile(ctx, prof); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	prof, err = s.store.GetProfile(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return prof, nil
}
