package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// FeedClient scarica il flusso anagrafica farmaci (CSV con separatore ';')
type FeedClient struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewFeedClient crea il client del feed
func NewFeedClient(url string, logger *zap.Logger) *FeedClient {
	client := resty.New().
		SetTimeout(5 * time.Minute). // anagrafica completa, decine di MB
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &FeedClient{
		httpClient: client,
		url:        url,
		logger:     logger,
	}
}

// Fetch apre lo stream del feed. Il chiamante chiude il reader.
func (c *FeedClient) Fetch(ctx context.Context) (io.ReadCloser, error) {
	c.logger.Info("Downloading drug feed",
		zap.String("url", c.url),
	)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to download feed: %w", err)
	}

	if resp.StatusCode() != 200 {
		resp.RawBody().Close()
		return nil, fmt.Errorf("feed download returned status %d", resp.StatusCode())
	}

	return resp.RawBody(), nil
}
