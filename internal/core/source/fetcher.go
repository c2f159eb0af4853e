// Package source 下載遠端食譜原文，供 URL 解析端點使用。
package source

import (
	"context"
	"net/url"
	"strings"

	"recipe-parser/internal/infrastructure/config"
	"recipe-parser/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Fetcher 食譜原文下載器
type Fetcher struct {
	config *config.Config
	client *resty.Client
}

// NewFetcher 創建下載器
func NewFetcher(cfg *config.Config) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.Fetch.Timeout).
		SetHeader("User-Agent", cfg.Fetch.UserAgent).
		SetHeader("Accept", "text/plain, text/markdown, text/*;q=0.8")

	return &Fetcher{
		config: cfg,
		client: client,
	}
}

// Fetch 下載食譜原文。只接受 http/https，回應過大或非文字時拒絕。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return "", common.ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", common.ErrInvalidURL
	}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(parsed.String())
	if err != nil {
		common.LogWarn("食譜來源下載失敗",
			zap.String("url", parsed.String()),
			zap.Error(err),
		)
		return "", common.NewError("FETCH_FAILED", "食譜來源下載失敗", common.ErrFetchFailed.Status, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		common.LogWarn("食譜來源回應異常",
			zap.String("url", parsed.String()),
			zap.Int("status", resp.StatusCode()),
		)
		return "", common.ErrFetchFailed
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "text/") {
		common.LogWarn("食譜來源非文字內容",
			zap.String("url", parsed.String()),
			zap.String("content_type", contentType),
		)
		return "", common.ErrFetchFailed
	}

	body := resp.Body()
	if f.config.Fetch.MaxSizeBytes > 0 && int64(len(body)) > f.config.Fetch.MaxSizeBytes {
		return "", common.ErrSourceTooLarge
	}

	common.LogInfo("食譜來源下載完成",
		zap.String("url", parsed.String()),
		zap.Int("bytes", len(body)),
	)

	return string(body), nil
}
