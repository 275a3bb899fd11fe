package proxypool

import (
	"context"
	"sort"
	"sync"
	"time"

	"proxyharvest/internal/shared/logger"
	"proxyharvest/internal/shared/types"
	"proxyharvest/proxypool/checker"
	"proxyharvest/proxypool/model"
	"proxyharvest/proxypool/scraper"
)

// Manager 是采集-验证流水线的总控制器:
// 并发抓取所有来源 -> 去重 -> (可选) 验证 -> 排序。
type Manager struct {
	cfg     *types.Config
	sources []*scraper.Source
	fetcher *scraper.Fetcher
	checker *checker.Checker
}

// NewManager 创建并初始化流水线管理器。
func NewManager(cfg *types.Config, entries []*types.SourceEntry) *Manager {
	m := &Manager{
		cfg:     cfg,
		fetcher: scraper.NewFetcher(time.Duration(cfg.ScrapeConf.TimeoutSeconds)*time.Second, cfg.ScrapeConf.UserAgent),
		checker: checker.New(cfg.CheckConf, cfg.ScrapeConf.UserAgent),
	}
	for _, entry := range entries {
		m.sources = append(m.sources, scraper.NewSource(entry))
	}
	return m
}

// Run 执行一次完整的流水线并返回最终有序结果。
// 运行总会完成: 单个来源或单个候选的失败只缩小结果集, 不中止运行。
func (m *Manager) Run() []*model.Result {
	l := logger.WithComponent("ProxyPool/Manager")

	scraped := m.scrapeAll()
	unique := Dedup(scraped)
	l.Info().Int("scraped", len(scraped)).Int("unique", len(unique)).Msg("Scraping finished.")

	var results []*model.Result
	if m.cfg.CheckConf.Enabled && m.cfg.CheckConf.URL != "" {
		for _, r := range m.checker.Check(unique) {
			if r.OK {
				results = append(results, r)
			}
		}
	} else {
		l.Info().Msg("Checking disabled, passing candidates through unchecked.")
		for _, p := range unique {
			results = append(results, &model.Result{Proxy: p})
		}
	}

	sortMode := m.cfg.OutputConf.Sort
	if !m.cfg.CheckConf.Enabled || m.cfg.CheckConf.URL == "" {
		// 未测量时速度排序没有意义
		sortMode = "address"
	}
	SortResults(results, sortMode)

	l.Info().Int("final", len(results)).Str("sort", sortMode).Msg("Pipeline finished.")
	return results
}

// scrapeAll 并发抓取所有来源并合并解析结果。
// 来源之间相互独立, 任一来源失败只记录日志并继续。
func (m *Manager) scrapeAll() []*model.Proxy {
	l := logger.WithComponent("ProxyPool/Manager")
	l.Info().Int("sources", len(m.sources)).Msg("Starting scrape cycle...")

	var wg sync.WaitGroup
	scrapedChan := make(chan []*model.Proxy, len(m.sources))

	for _, src := range m.sources {
		wg.Add(1)
		go func(src *scraper.Source) {
			defer wg.Done()

			proxies, err := m.scrapeSource(src)
			if err != nil {
				l.Warn().Err(err).Str("source", src.Location).Msg("Source failed, skipping.")
				return
			}
			if len(proxies) == 0 {
				l.Warn().Str("source", src.Location).Msg("No proxies found in source.")
				return
			}
			l.Info().Int("count", len(proxies)).Str("source", src.Location).Msg("Source scraped.")
			scrapedChan <- proxies
		}(src)
	}

	wg.Wait()
	close(scrapedChan)

	var all []*model.Proxy
	for proxies := range scrapedChan {
		all = append(all, proxies...)
	}
	return all
}

func (m *Manager) scrapeSource(src *scraper.Source) ([]*model.Proxy, error) {
	if src.Kind == "html" {
		return scraper.ScrapeHTML(src,
			time.Duration(m.cfg.ScrapeConf.TimeoutSeconds)*time.Second,
			m.cfg.ScrapeConf.UserAgent,
			m.cfg.ScrapeConf.MaxPerSource)
	}

	text, err := m.fetcher.Fetch(context.Background(), src)
	if err != nil {
		return nil, err
	}
	return scraper.ParseText(text, src.Protocol, m.cfg.ScrapeConf.MaxPerSource), nil
}

// Dedup 将所有来源的记录归并为以 (protocol, host, port) 为键的集合。
// 首见记录保留; 仅当首见记录无凭据而后见记录有时, 回填凭据。
// 输出顺序跟随输入首见顺序, 最终顺序由排序阶段决定。
func Dedup(proxies []*model.Proxy) []*model.Proxy {
	seen := make(map[string]*model.Proxy, len(proxies))
	unique := make([]*model.Proxy, 0, len(proxies))

	for _, p := range proxies {
		key := p.Key()
		if kept, ok := seen[key]; ok {
			if !kept.HasAuth() && p.HasAuth() {
				kept.Username = p.Username
				kept.Password = p.Password
			}
			continue
		}
		seen[key] = p
		unique = append(unique, p)
	}
	return unique
}

// SortResults 对结果施加总序。
// "speed": 按耗时升序, (host, port) 决胜以保证确定性;
// 其他值: 按地址升序 (IPv4 按八位组数值, 其余按字典序), 再按端口。
func SortResults(results []*model.Result, mode string) {
	if mode == "speed" {
		sort.Slice(results, func(i, j int) bool {
			if results[i].ElapsedSeconds != results[j].ElapsedSeconds {
				return results[i].ElapsedSeconds < results[j].ElapsedSeconds
			}
			return model.CompareAddress(results[i].Proxy, results[j].Proxy) < 0
		})
		return
	}

	sort.Slice(results, func(i, j int) bool {
		return model.CompareAddress(results[i].Proxy, results[j].Proxy) < 0
	})
}
