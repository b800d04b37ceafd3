// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the Google Custom Search API and yields result
// links as a lazy, bounded sequence.
package search

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/pdiddy/pdfgrab/pkg/types"
)

// pageSize is the Custom Search API's fixed maximum of results per call.
const pageSize = 10

// APIError reports a failed Custom Search API call. It carries the HTTP
// status and message the API returned when one is available.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search API: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("search API: %v", e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client wraps the generated Custom Search service.
type Client struct {
	svc      *customsearch.Service
	engineID string
}

// New builds a Client authenticated with the config's API key. Extra
// options follow the key, so tests can redirect the service with
// option.WithEndpoint.
func New(ctx context.Context, cfg types.FetchConfig, opts ...option.ClientOption) (*Client, error) {
	all := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	svc, err := customsearch.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("creating custom search service: %w", err)
	}
	svc.UserAgent = cfg.UserAgent
	return &Client{svc: svc, engineID: cfg.SearchEngineID}, nil
}

// Results returns a lazy sequence of search results for cfg, paging
// from cfg.Start to cfg.Stop inclusive in API-returned order. The
// sequence ends when a page comes back empty, the API reports no next
// page, or the index range is exhausted. An API failure yields a single
// *APIError and ends the sequence; the caller decides whether the run
// continues with what it has.
func (c *Client) Results(ctx context.Context, cfg types.FetchConfig) iter.Seq2[types.SearchResult, error] {
	query := cfg.FullQuery()
	return func(yield func(types.SearchResult, error) bool) {
		for start := cfg.Start; start <= cfg.Stop; {
			num := pageSize
			if remaining := cfg.Stop - start + 1; remaining < num {
				num = remaining
			}

			call := c.svc.Cse.List().
				Q(query).
				Cx(c.engineID).
				Start(int64(start)).
				Num(int64(num)).
				Context(ctx)
			if cfg.Referer != "" {
				call.Header().Set("Referer", cfg.Referer)
			}

			resp, err := call.Do()
			if err != nil {
				yield(types.SearchResult{}, wrapAPIError(err))
				return
			}
			if len(resp.Items) == 0 {
				return
			}

			for i, item := range resp.Items {
				r := types.SearchResult{
					Link:    item.Link,
					Title:   item.Title,
					Snippet: item.Snippet,
					MIME:    item.Mime,
					Index:   start + i,
				}
				if !yield(r, nil) {
					return
				}
			}

			if resp.Queries == nil || len(resp.Queries.NextPage) == 0 {
				return
			}
			start = int(resp.Queries.NextPage[0].StartIndex)
		}
	}
}

func wrapAPIError(err error) *APIError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &APIError{StatusCode: gerr.Code, Message: gerr.Message, Err: err}
	}
	return &APIError{Err: err}
}
