package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/conference-central/internal/model"
)

const featuredSpeakerKeyPrefix = "featuredSpeaker-"

// FeaturedSpeakerCacheKey is the cache key of a conference's featured speaker.
func FeaturedSpeakerCacheKey(conferenceKey string) string {
	return featuredSpeakerKeyPrefix + conferenceKey
}

// DeriveFeaturedSpeaker scans sessions in creation order and returns the
// speaker whose repeat appearance was observed last, with the names of all
// of that speaker's sessions.  ok is false when every speaker is distinct.
func DeriveFeaturedSpeaker(sessions []*model.Session) (fs model.FeaturedSpeaker, ok bool) {
	names := make(map[string][]string)
	var candidate string
	for _, s := range sessions {
		names[s.Speaker] = append(names[s.Speaker], s.Name)
		if len(names[s.Speaker]) > 1 {
			candidate = s.Speaker
			ok = true
		}
	}
	if !ok {
		return model.FeaturedSpeaker{}, false
	}
	return model.FeaturedSpeaker{Speaker: candidate, SessionNames: names[candidate]}, true
}

// UpdateFeaturedSpeaker recomputes a conference's featured speaker and
// caches it when one exists.  Running it twice has the same effect as once.
func (s *Service) UpdateFeaturedSpeaker(ctx context.Context, conferenceKey string) error {
	_, _, err := s.refreshFeaturedSpeaker(ctx, conferenceKey)
	return err
}

// HandleFeaturedSpeakerTask adapts UpdateFeaturedSpeaker to the task
// dispatcher's handler signature.
func (s *Service) HandleFeaturedSpeakerTask(ctx context.Context, params map[string]string) error {
	key := params["conferenceKey"]
	if key == "" {
		return fmt.Errorf("featured speaker task: missing conferenceKey")
	}
	return s.UpdateFeaturedSpeaker(ctx, key)
}

// GetFeaturedSpeaker returns the cached featured speaker of a conference,
// recomputing and caching it on a miss.  ok is false when the conference has
// no repeated speaker.
func (s *Service) GetFeaturedSpeaker(ctx context.Context, conferenceKey string) (model.FeaturedSpeaker, bool, error) {
	if _, err := s.getConference(ctx, conferenceKey); err != nil {
		return model.FeaturedSpeaker{}, false, err
	}

	cacheKey := FeaturedSpeakerCacheKey(conferenceKey)
	raw, hit, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", cacheKey).Msg("cache get failed")
	}
	if err == nil && hit {
		var fs model.FeaturedSpeaker
		if err := json.Unmarshal([]byte(raw), &fs); err == nil {
			return fs, true, nil
		}
		s.log.Warn().Str("key", cacheKey).Msg("discarding malformed featured speaker entry")
	}

	return s.refreshFeaturedSpeaker(ctx, conferenceKey)
}

func (s *Service) refreshFeaturedSpeaker(ctx context.Context, conferenceKey string) (model.FeaturedSpeaker, bool, error) {
	sessions, err := s.store.ListSessionsByConference(ctx, conferenceKey)
	if err != nil {
		return model.FeaturedSpeaker{}, false, fmt.Errorf("list sessions: %w", err)
	}
	fs, ok := DeriveFeaturedSpeaker(sessions)
	if !ok {
		return fs, false, nil
	}

	raw, err := json.Marshal(fs)
	if err != nil {
		return fs, true, fmt.Errorf("encode featured speaker: %w", err)
	}
	if err := s.cache.Set(ctx, FeaturedSpeakerCacheKey(conferenceKey), string(raw)); err != nil {
		s.log.Warn().Err(err).Str("conference", conferenceKey).Msg("cache featured speaker failed")
	}
	return fs, true, nil
}
