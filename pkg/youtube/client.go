// Package youtube wraps the YouTube Data API calls used for video enhancement.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

var ErrVideoNotFound = errors.New("youtube video not found")

var videoParts = []string{"snippet", "contentDetails", "statistics"}

// Client fetches videos and category names. Category names are cached for the life of the client.
type Client struct {
	service    *yt.Service
	categories sync.Map
}

// NewClient builds a client authenticated with an API key. Extra options are appended, which
// lets tests point the client at a local endpoint.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("youtube api key not provided")
	}
	svc, err := yt.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{service: svc}, nil
}

func (c *Client) FetchVideo(ctx context.Context, youtubeID string) (*yt.Video, error) {
	resp, err := c.service.Videos.List(videoParts).Id(youtubeID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("videos.list %s: %w", youtubeID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, youtubeID)
	}
	return resp.Items[0], nil
}

func (c *Client) CategoryName(ctx context.Context, categoryID string) (string, error) {
	if name, ok := c.categories.Load(categoryID); ok {
		return name.(string), nil
	}
	resp, err := c.service.VideoCategories.List([]string{"snippet"}).Id(categoryID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("videoCategories.list %s: %w", categoryID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", fmt.Errorf("unknown video category %s", categoryID)
	}
	name := resp.Items[0].Snippet.Title
	c.categories.Store(categoryID, name)
	return name, nil
}
