package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"reddit-persona/config"
	"reddit-persona/httpclient"
	"reddit-persona/models"
)

// FeedClient 는 Reddit 사용자 Atom 피드로 활동을 수집한다.
// 인증이 필요 없지만 피드에는 점수가 없으므로 Score 는 항상 0 이다.
type FeedClient struct {
	req    *requester
	parser *gofeed.Parser
}

func NewFeedClient(cfg config.RedditConfig, opts Options) *FeedClient {
	base := httpclient.New(httpclient.Config{Timeout: cfg.RequestTimeout, UserAgent: cfg.UserAgent})
	return newFeedClientWithHTTP(base, cfg.BaseURL, opts)
}

func newFeedClientWithHTTP(httpClient *http.Client, baseURL string, opts Options) *FeedClient {
	return &FeedClient{
		req:    newRequester(httpclient.NewBaseClient(httpClient, baseURL), opts),
		parser: gofeed.NewParser(),
	}
}

func feedPath(handle string, kind models.ActivityKind) string {
	collection := "submitted"
	if kind == models.KindComment {
		collection = "comments"
	}
	return "/user/" + url.PathEscape(handle) + "/" + collection + "/.rss"
}

func (c *FeedClient) Activity(ctx context.Context, handle string, kind models.ActivityKind, limit int) iter.Seq2[models.ActivityRecord, error] {
	return func(yield func(models.ActivityRecord, error) bool) {
		relPath := feedPath(handle, kind)
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

			feed, err := c.parser.Parse(bytes.NewReader(body))
			if err != nil {
				yield(models.ActivityRecord{}, fmt.Errorf("%w: parse feed: %v", ErrFetchFailed, err))
				return
			}
			if len(feed.Items) == 0 {
				return
			}

			for _, item := range feed.Items {
				fetched++
				if rec, ok := normalize(feedRecord(item, kind)); ok {
					if !yield(rec, nil) {
						return
					}
				}
				if limit > 0 && fetched >= limit {
					return
				}
			}

			if len(feed.Items) < pageSize {
				return
			}
			after = feed.Items[len(feed.Items)-1].GUID
			if after == "" {
				return
			}
		}
	}
}

func feedRecord(item *gofeed.Item, kind models.ActivityKind) models.ActivityRecord {
	var created time.Time
	if item.PublishedParsed != nil {
		created = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		created = item.UpdatedParsed.UTC()
	}

	subreddit := ""
	if len(item.Categories) > 0 {
		subreddit = item.Categories[0]
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	rec := models.ActivityRecord{
		ID:        item.GUID,
		Kind:      kind,
		Subreddit: subreddit,
		CreatedAt: created,
		Permalink: permalinkOf(item.Link),
		Body:      htmlToText(content),
	}
	if kind == models.KindPost {
		rec.Title = item.Title
		rec.Body = stripSubmittedBy(rec.Body)
	}
	return rec
}

// stripSubmittedBy 는 게시글 피드 본문 끝의 "submitted by /u/x [link] [comments]" 줄을 제거한다.
func stripSubmittedBy(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "submitted by") {
			return strings.TrimSpace(strings.Join(lines[:i], "\n"))
		}
	}
	return body
}

func permalinkOf(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return link
	}
	return u.Path
}
