package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/intisuite/aula-api/internal/models"
)

type userDirectory interface {
	FindOne(ctx context.Context, userID string) (*models.UserProfile, error)
}

// profileFanOutLimit bounds concurrent directory lookups per request.
const profileFanOutLimit = 8

// fetchProfiles resolves display profiles for a set of users in parallel.
// Lookups that fail are logged and omitted; callers fall back to zero values.
func fetchProfiles(ctx context.Context, directory userDirectory, logger *zap.Logger, userIDs []string) map[string]models.UserProfile {
	profiles := make(map[string]models.UserProfile, len(userIDs))
	if directory == nil || len(userIDs) == 0 {
		return profiles
	}

	unique := make([]string, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, profileFanOutLimit)

	for _, userID := range unique {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			profile, err := directory.FindOne(ctx, id)
			if err != nil {
				logger.Warn("user directory lookup failed", zap.String("user_id", id), zap.Error(err))
				return
			}
			mu.Lock()
			profiles[id] = *profile
			mu.Unlock()
		}(userID)
	}

	wg.Wait()
	return profiles
}
