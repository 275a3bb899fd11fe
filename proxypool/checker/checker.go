package checker

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	xproxy "golang.org/x/net/proxy"
	"h12.io/socks"

	"proxyharvest/internal/shared/logger"
	"proxyharvest/internal/shared/types"
	"proxyharvest/proxypool/model"
)

// maxBodyBytes bounds how much of the check-target response is read.
// Echo services return a short IP string; anything larger is noise.
const maxBodyBytes = 4096

// errBadResponse 标识检查端点返回了无法接受的响应 (非 2xx/3xx 或空响应体)。
var errBadResponse = errors.New("bad response from check target")

// Checker 对候选代理执行真实探测: 经由代理向检查端点发起 GET,
// 记录耗时并解析出口地址。并发探测数由准入门限制。
type Checker struct {
	checkURL    string
	timeout     time.Duration
	concurrency int
	userAgent   string
	progress    bool

	// probe 可在测试中替换为桩实现。
	probe func(ctx context.Context, p *model.Proxy) (string, error)
}

// New 创建一个新的 Checker。
func New(cfg types.CheckConf, userAgent string) *Checker {
	concurrency := cfg.MaxConcurrent
	if concurrency <= 0 {
		concurrency = 5
	}
	c := &Checker{
		checkURL:    cfg.URL,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		concurrency: concurrency,
		userAgent:   userAgent,
		progress:    cfg.Progress,
	}
	c.probe = c.probeProxy
	return c
}

// Check 对每个候选产生恰好一个 Result。单个候选的失败 (含超时) 只体现在
// 它自己的 Result 上, 绝不影响其他候选的探测。
func (c *Checker) Check(proxies []*model.Proxy) []*model.Result {
	l := logger.WithComponent("ProxyPool/Checker")
	if len(proxies) == 0 {
		return nil
	}

	l.Info().Int("count", len(proxies)).Int("concurrency", c.concurrency).Msg("Starting check batch...")

	var bar *progressbar.ProgressBar
	if c.progress {
		bar = progressbar.NewOptions(len(proxies),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("checking"),
			progressbar.OptionShowCount(),
		)
	}

	var wg sync.WaitGroup
	resultsChan := make(chan *model.Result, len(proxies))
	semaphore := make(chan struct{}, c.concurrency)

	for _, p := range proxies {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(proxy *model.Proxy) {
			defer wg.Done()
			defer func() { <-semaphore }()

			resultsChan <- c.checkSingleProxy(proxy)
			if bar != nil {
				_ = bar.Add(1)
			}
		}(p)
	}

	wg.Wait()
	close(resultsChan)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	results := make([]*model.Result, 0, len(proxies))
	okCount := 0
	for r := range resultsChan {
		results = append(results, r)
		if r.OK {
			okCount++
		}
	}

	l.Info().Int("total", len(results)).Int("working", okCount).Msg("Check batch finished.")
	return results
}

// checkSingleProxy 执行一次完整探测并把结果收敛为 Result。
// 整个探测 (握手 + 请求) 由单一 context 超时约束。
func (c *Checker) checkSingleProxy(p *model.Proxy) *model.Result {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	startTime := time.Now()
	exitIP, err := c.probe(ctx, p)
	elapsed := time.Since(startTime)

	result := &model.Result{Proxy: p, Checked: true}
	if err != nil {
		result.Reason = classify(err)
		l := logger.WithComponent("ProxyPool/Checker")
		l.Debug().
			Str("proxy", p.URL(true)).
			Str("reason", string(result.Reason)).
			Err(err).
			Msg("Probe failed.")
		return result
	}

	result.OK = true
	result.ElapsedSeconds = elapsed.Seconds()
	result.ExitIP = exitIP
	return result
}

// probeProxy 经由候选代理向检查端点发起 GET 并解析出口地址。
func (c *Checker) probeProxy(ctx context.Context, p *model.Proxy) (string, error) {
	transport, err := c.transportFor(p)
	if err != nil {
		return "", err
	}
	defer transport.CloseIdleConnections()

	client := &http.Client{Transport: transport}

	req, err := http.NewRequestWithContext(ctx, "GET", c.checkURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: status code %d", errBadResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}

	exitIP := ParseExitIP(string(body))
	if exitIP == "" {
		return "", fmt.Errorf("%w: empty body", errBadResponse)
	}
	return exitIP, nil
}

// transportFor 按协议构造经由该代理的 HTTP transport。
func (c *Checker) transportFor(p *model.Proxy) (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: c.timeout}

	transport := &http.Transport{
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		TLSHandshakeTimeout: c.timeout,
		DisableKeepAlives:   true,
	}

	switch p.Protocol {
	case "http":
		proxyURL, err := url.Parse("http://" + p.URL(false))
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		transport.DialContext = dialer.DialContext

	case "socks5":
		var auth *xproxy.Auth
		if p.HasAuth() {
			auth = &xproxy.Auth{User: p.Username, Password: p.Password}
		}
		socksDialer, err := xproxy.SOCKS5("tcp", p.Addr(), auth, dialer)
		if err != nil {
			return nil, err
		}
		transport.DialContext = socksDialer.(xproxy.ContextDialer).DialContext

	case "socks4":
		// h12.io/socks 的拨号函数自带超时, 不感知 context;
		// 整体仍由请求 context 约束。
		dial := socks.Dial(fmt.Sprintf("socks4://%s?timeout=%ds", p.Addr(), int(c.timeout.Seconds())))
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dial(network, addr)
		}

	default:
		return nil, fmt.Errorf("unsupported proxy protocol %q", p.Protocol)
	}

	return transport, nil
}

// classify 把探测错误映射为失败原因。
func classify(err error) model.Reason {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}

	if errors.Is(err, errBadResponse) {
		return model.ReasonBadResponse
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ReasonTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return model.ReasonTimeout
	}
	var operr *net.OpError
	if errors.As(err, &operr) && operr.Op == "dial" {
		return model.ReasonConnectError
	}
	return model.ReasonHandshakeError
}
