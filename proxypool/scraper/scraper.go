package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"proxyharvest/internal/shared/types"
)

// Source 描述一个待抓取的代理来源。
type Source struct {
	// Protocol 是协议提示, 行内显式 scheme 优先。
	Protocol string
	// Location 是 URL、本地路径或 "file://" 路径。
	Location string
	// Kind 是 "text" (默认) 或 "html"。
	Kind string
	// RowSelector 仅用于 html 来源。
	RowSelector string
}

// NewSource 从配置条目构建 Source。
func NewSource(entry *types.SourceEntry) *Source {
	kind := entry.Kind
	if kind == "" {
		kind = "text"
	}
	return &Source{
		Protocol:    strings.ToLower(entry.Protocol),
		Location:    entry.Location,
		Kind:        kind,
		RowSelector: entry.RowSelector,
	}
}

// IsLocal reports whether the source reads from the filesystem.
// 无 scheme 的路径与 "file://" 路径都视为本地文件。
func (s *Source) IsLocal() bool {
	u, err := url.Parse(s.Location)
	if err != nil {
		return true
	}
	return u.Scheme == "" || u.Scheme == "file"
}

// FetchError 标识单个来源的抓取失败。此类失败只跳过该来源, 不中止整个运行。
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher 负责获取来源的原始文本, 每个来源有独立的超时。
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// NewFetcher 创建一个新的实例。
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Fetch 返回来源的原始文本。远程来源走 HTTP GET, 本地来源读文件系统。
// 任何传输错误都包装为 FetchError 返回, 由调用方决定继续处理其他来源。
func (f *Fetcher) Fetch(ctx context.Context, src *Source) (string, error) {
	if src.IsLocal() {
		path := strings.TrimPrefix(src.Location, "file://")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", &FetchError{Source: src.Location, Err: err}
		}
		return string(data), nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", src.Location, nil)
	if err != nil {
		return "", &FetchError{Source: src.Location, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{Source: src.Location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", &FetchError{Source: src.Location, Err: fmt.Errorf("received non-200 status code (%d)", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Source: src.Location, Err: err}
	}
	return string(body), nil
}
