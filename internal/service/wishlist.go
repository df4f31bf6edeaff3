package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/conference-central/internal/model"
)

// AddSessionToWishlist records that the caller wants to attend a session.
// Adding the same session twice is a no-op.
func (s *Service) AddSessionToWishlist(ctx context.Context, sessionKey string) (bool, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return false, err
	}
	if _, err := s.store.GetSession(ctx, sessionKey); err != nil {
		if isNotFound(err) {
			return false, errorf(ErrNotFound, "No session found with key: %s", sessionKey)
		}
		return false, fmt.Errorf("get session: %w", err)
	}

	exists, err := s.store.WishlistItemExists(ctx, id.UserID, sessionKey)
	if err != nil {
		return false, fmt.Errorf("check wishlist: %w", err)
	}
	if exists {
		return true, nil
	}
	item := model.WishlistItem{UserID: id.UserID, SessionKey: sessionKey}
	if err := s.store.CreateWishlistItem(ctx, item); err != nil {
		return false, fmt.Errorf("create wishlist item: %w", err)
	}
	return true, nil
}

// GetSessionsInWishlist returns the caller's wishlisted sessions.
func (s *Service) GetSessionsInWishlist(ctx context.Context) ([]*model.Session, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := s.store.ListWishlistSessionKeys(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	sessions, err := s.store.GetSessions(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}
	return sessions, nil
}

// WishlistedConference is a conference with the number of its sessions on
// the caller's wishlist.
type WishlistedConference struct {
	ConferenceView
	WishlistedSessions int
}

// GetConferencesWithWishlistedSessions lists the conferences containing the
// caller's wishlisted sessions, most wishlisted first.
func (s *Service) GetConferencesWithWishlistedSessions(ctx context.Context) ([]WishlistedConference, error) {
	id, err := s.requireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountWishlistedByConference(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("count wishlist: %w", err)
	}

	keys := make([]string, 0, len(counts))
	for _, c := range counts {
		keys = append(keys, c.ConferenceKey)
	}
	confs, err := s.store.GetConferences(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get conferences: %w", err)
	}
	views, err := s.withOrganizers(ctx, confs)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]ConferenceView, len(views))
	for _, v := range views {
		byKey[v.Conference.Key] = v
	}
	out := make([]WishlistedConference, 0, len(counts))
	for _, c := range counts {
		v, ok := byKey[c.ConferenceKey]
		if !ok {
			continue
		}
		out = append(out, WishlistedConference{ConferenceView: v, WishlistedSessions: c.Count})
	}
	return out, nil
}
