package mockapi

import (
	"fmt"
	"time"

	"github.com/snaplet/snaplet/internal/client/models"
)

const (
	feedSize        = 24
	defaultFeedSize = 10
	maxFeedLimit    = 50
)

var captions = []string{
	"Morning coffee",
	"",
	"Sunset at the pier",
	"New haircut, who dis",
	"",
	"Weekend hike",
}

// buildFeed returns the fixture posts newest first.
func buildFeed(users *userStore) []models.Photo {
	newest := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	photos := make([]models.Photo, 0, feedSize)

	for i := 0; i < feedSize; i++ {
		u := users.order[i%len(users.order)]
		vis := models.VisibilityFriends
		if i%3 == 0 {
			vis = models.VisibilityPublic
		}
		photos = append(photos, models.Photo{
			ID:          fmt.Sprintf("post-%03d", i+1),
			UserID:      u.profile.ID,
			Username:    u.profile.UserName,
			DisplayName: u.profile.DisplayName,
			AvatarURL:   u.profile.AvatarURL,
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/snaplet-%d/1080/1440", i+1),
			Caption:     captions[i%len(captions)],
			Visibility:  vis,
			CreatedAt:   newest.Add(-time.Duration(i) * 3 * time.Hour).Format(time.RFC3339),
		})
	}
	return photos
}

// pageOf slices feed for the viewer and marks their own posts.
func pageOf(feed []models.Photo, viewerID string, limit, offset int) models.FeedPage {
	start := min(offset, len(feed))
	end := min(start+limit, len(feed))

	items := make([]models.Photo, 0, end-start)
	for _, p := range feed[start:end] {
		p.IsOwnPost = p.UserID == viewerID
		items = append(items, p)
	}

	return models.FeedPage{
		Items:      items,
		Pagination: models.Pagination{Offset: offset, Limit: limit},
	}
}
