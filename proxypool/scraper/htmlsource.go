package scraper

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"proxyharvest/internal/shared/logger"
	"proxyharvest/proxypool/model"
)

const defaultRowSelector = "table tbody tr"

// ScrapeHTML 抓取一个 html 类型来源: 页面上表格的每一行前两个单元格
// 依次为 host 和 port。解析失败的行静默跳过, 与文本来源的宽松策略一致。
func ScrapeHTML(src *Source, timeout time.Duration, userAgent string, max int) ([]*model.Proxy, error) {
	l := logger.WithComponent("ProxyPool/Scraper")

	selector := src.RowSelector
	if selector == "" {
		selector = defaultRowSelector
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(timeout)

	var proxies []*model.Proxy
	var parseErr error

	c.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			parseErr = fmt.Errorf("failed to parse HTML for %s: %w", src.Location, err)
			return
		}

		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if max > 0 && len(proxies) >= max {
				return
			}

			host := strings.TrimSpace(sel.Find("td").Eq(0).Text())
			portStr := strings.TrimSpace(sel.Find("td").Eq(1).Text())
			if host == "" || portStr == "" {
				return
			}

			port, err := strconv.Atoi(portStr)
			if err != nil || port < 1 || port > 65535 {
				l.Debug().Str("host", host).Str("port", portStr).Msg("Invalid port in table row, skipping.")
				return
			}

			proxies = append(proxies, &model.Proxy{
				Protocol: src.Protocol,
				Host:     host,
				Port:     port,
			})
		})
	})

	if err := c.Visit(src.Location); err != nil {
		return nil, &FetchError{Source: src.Location, Err: err}
	}
	c.Wait()

	if parseErr != nil {
		return nil, &FetchError{Source: src.Location, Err: parseErr}
	}
	return proxies, nil
}
