package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"reddit-persona/config"
	"reddit-persona/httpclient"
	"reddit-persona/models"
)

// RedditClient 는 Reddit JSON 리스팅 API 로 사용자 활동을 수집한다.
// client_id/client_secret 이 설정되어 있으면 client-credentials 토큰으로 oauth 호스트를 호출하고,
// 없으면 공개 www 호스트의 .json 엔드포인트를 사용한다.
type RedditClient struct {
	req           *requester
	authenticated bool
}

func NewRedditClient(cfg config.RedditConfig, opts Options) *RedditClient {
	base := httpclient.New(httpclient.Config{Timeout: cfg.RequestTimeout, UserAgent: cfg.UserAgent})

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return &RedditClient{req: newRequester(httpclient.NewBaseClient(base, cfg.BaseURL), opts)}
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	// 토큰 요청과 API 요청 모두 로깅 트랜스포트와 User-Agent 를 거치도록 base 클라이언트를 넘긴다.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	authed := cc.Client(tokenCtx)
	authed.Timeout = base.Timeout

	return &RedditClient{
		req:           newRequester(httpclient.NewBaseClient(authed, cfg.OAuthBaseURL), opts),
		authenticated: true,
	}
}

// newRedditClientWithHTTP 는 테스트에서 임의의 서버를 가리키도록 할 때 사용한다.
func newRedditClientWithHTTP(httpClient *http.Client, baseURL string, opts Options) *RedditClient {
	return &RedditClient{req: newRequester(httpclient.NewBaseClient(httpClient, baseURL), opts)}
}

type listing struct {
	Kind  string `json:"kind"`
	Error int    `json:"error"`
	Data  struct {
		After    string `json:"after"`
		Children []struct {
			Kind string    `json:"kind"`
			Data thingData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type thingData struct {
	Name        string  `json:"name"`
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Body        string  `json:"body"`
	Subreddit   string  `json:"subreddit"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	Permalink   string  `json:"permalink"`
	NumComments int     `json:"num_comments"`
}

func (d thingData) record(kind models.ActivityKind) models.ActivityRecord {
	id := d.Name
	if id == "" {
		id = d.ID
	}
	sec, frac := math.Modf(d.CreatedUTC)
	rec := models.ActivityRecord{
		ID:        id,
		Kind:      kind,
		Subreddit: d.Subreddit,
		CreatedAt: time.Unix(int64(sec), int64(frac*1e9)).UTC(),
		Score:     d.Score,
		Permalink: d.Permalink,
	}
	if kind == models.KindPost {
		rec.Title = d.Title
		rec.Body = d.Selftext
		rec.NumComments = d.NumComments
	} else {
		rec.Body = d.Body
	}
	return rec
}

func (c *RedditClient) listingPath(handle string, kind models.ActivityKind) string {
	collection := "submitted"
	if kind == models.KindComment {
		collection = "comments"
	}
	p := "/user/" + url.PathEscape(handle) + "/" + collection
	if !c.authenticated {
		p += ".json"
	}
	return p
}

func (c *RedditClient) Activity(ctx context.Context, handle string, kind models.ActivityKind, limit int) iter.Seq2[models.ActivityRecord, error] {
	return func(yield func(models.ActivityRecord, error) bool) {
		relPath := c.listingPath(handle, kind)
		after := ""
		fetched := 0

		for limit <= 0 || fetched < limit {
			pageSize := c.req.opts.PageSize
			if limit > 0 && limit-fetched < pageSize {
				pageSize = limit - fetched
			}
			query := url.Values{"limit": {strconv.Itoa(pageSize)}}
			if after != "" {
				query.Set("after", after)
			}

			body, err := c.req.get(ctx, relPath, query)
			if err != nil {
				yield(models.ActivityRecord{}, err)
				return
			}

			var page listing
			if err := json.Unmarshal(body, &page); err != nil {
				yield(models.ActivityRecord{}, fmt.Errorf("%w: decode listing: %v", ErrFetchFailed, err))
				return
			}
			if page.Error == http.StatusNotFound || page.Error == http.StatusForbidden {
				yield(models.ActivityRecord{}, ErrUserNotFound)
				return
			}
			if len(page.Data.Children) == 0 {
				return
			}

			for _, child := range page.Data.Children {
				fetched++
				if rec, ok := normalize(child.Data.record(kind)); ok {
					if !yield(rec, nil) {
						return
					}
				}
				if limit > 0 && fetched >= limit {
					return
				}
			}

			if page.Data.After == "" {
				return
			}
			after = page.Data.After
		}
	}
}
