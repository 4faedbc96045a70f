package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"idle-fm-api/domain/model"
	"idle-fm-api/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// videos.list accepts at most 50 ids per call.
const detailsBatchSize = 50

// Client is the YouTube Data API client used by search. It is built once at
// startup and shared by every request.
type Client struct {
	service    *youtube.Service
	maxResults int64
}

// Config represents YouTube API configuration
type Config struct {
	APIKey       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	RefreshToken string
	MaxResults   int64
}

// NewYouTubeClient creates a client in API key mode, or in OAuth mode when a
// refresh token and client credentials are configured.
func NewYouTubeClient(ctx context.Context, config *Config) (*Client, error) {
	if config.RefreshToken != "" && config.ClientID != "" {
		oauth2Config := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-1 * time.Minute), // force refresh on first use
		}
		service, err := youtube.NewService(ctx, option.WithHTTPClient(oauth2Config.Client(ctx, token)))
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service: %w", err)
		}
		return NewYouTubeClientWithService(service, config.MaxResults), nil
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("youtube: neither API key nor OAuth refresh token configured")
	}
	service, err := youtube.NewService(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service with API key: %w", err)
	}
	return NewYouTubeClientWithService(service, config.MaxResults), nil
}

// NewYouTubeClientWithService wraps an already configured service.
func NewYouTubeClientWithService(service *youtube.Service, maxResults int64) *Client {
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}
	return &Client{service: service, maxResults: maxResults}
}

// Search runs search.list for videos matching query. Items is nil when the
// response carried no item collection.
func (c *Client) Search(ctx context.Context, query string) (*model.SearchResponse, error) {
	resp, err := c.service.Search.List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		MaxResults(c.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}
	out := &model.SearchResponse{}
	if resp.Items == nil {
		return out, nil
	}
	out.Items = make([]model.SearchItem, 0, len(resp.Items))
	for _, r := range resp.Items {
		if r == nil {
			continue
		}
		item, err := toSearchItem(r.MarshalJSON())
		if err != nil {
			logger.WithContext(ctx).WithField("error", err).Warn("youtube: undecodable search item")
			continue
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// FetchDetails runs videos.list(contentDetails) for ids in batches. Any
// failure yields an empty result.
func (c *Client) FetchDetails(ctx context.Context, ids []string) []model.SearchItem {
	out := []model.SearchItem{}
	for start := 0; start < len(ids); start += detailsBatchSize {
		end := start + detailsBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		resp, err := c.service.Videos.List([]string{"contentDetails"}).
			Id(strings.Join(ids[start:end], ",")).
			Context(ctx).
			Do()
		if err != nil {
			logger.WithContext(ctx).WithFields(map[string]interface{}{
				"error": err,
				"count": len(ids),
			}).Warn("youtube: video details fetch failed")
			return []model.SearchItem{}
		}
		for _, v := range resp.Items {
			if v == nil {
				continue
			}
			item, err := toSearchItem(v.MarshalJSON())
			if err != nil {
				continue
			}
			out = append(out, item)
		}
	}
	return out
}

func toSearchItem(raw []byte, err error) (model.SearchItem, error) {
	if err != nil {
		return model.SearchItem{}, err
	}
	return model.NewSearchItem(raw)
}
