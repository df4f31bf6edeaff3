package service

import (
	"context"
	"fmt"
	"strings"
)

// AnnouncementCacheKey holds the current nearly-sold-out announcement.
const AnnouncementCacheKey = "RECENT_ANNOUNCEMENTS"

const (
	announcementTemplate = "Last chance to attend! The following conferences are nearly sold out: %s"
	nearlySoldOutSeats   = 5
)

// CacheAnnouncement rebuilds the announcement from conferences with between
// one and five seats left, or clears it when there are none.  It returns the
// cached text.
func (s *Service) CacheAnnouncement(ctx context.Context) (string, error) {
	names, err := s.store.ListNearlySoldOut(ctx, nearlySoldOutSeats)
	if err != nil {
		return "", fmt.Errorf("list nearly sold out: %w", err)
	}
	if len(names) == 0 {
		if err := s.cache.Delete(ctx, AnnouncementCacheKey); err != nil {
			return "", fmt.Errorf("clear announcement: %w", err)
		}
		return "", nil
	}

	text := fmt.Sprintf(announcementTemplate, strings.Join(names, ", "))
	if err := s.cache.Set(ctx, AnnouncementCacheKey, text); err != nil {
		return "", fmt.Errorf("set announcement: %w", err)
	}
	return text, nil
}

// GetAnnouncement returns the cached announcement or "" when none is set.
func (s *Service) GetAnnouncement(ctx context.Context) (string, error) {
	text, ok, err := s.cache.Get(ctx, AnnouncementCacheKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("announcement cache get failed")
		return "", nil
	}
	if !ok {
		return "", nil
	}
	return text, nil
}
