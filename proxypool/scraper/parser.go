package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"proxyharvest/internal/shared/logger"
	"proxyharvest/proxypool/model"
)

// lineRegex 匹配 [scheme://][user:pass@]host:port 形式的行。
// 端口范围在代码中校验, 正则只要求数字形式。
var lineRegex = regexp.MustCompile(
	`^(?:(?P<scheme>https?|socks4|socks5)://)?` +
		`(?:(?P<user>[0-9A-Za-z]{1,64}):(?P<pass>[0-9A-Za-z]{1,64})@)?` +
		`(?P<host>[0-9A-Za-z][-.0-9A-Za-z]{0,252}):(?P<port>[0-9]{1,5})$`)

// ParseText 从原始文本中提取代理记录。
//
// 逐行处理: 空行与 "#" 开头的注释行直接跳过; 形似 host:port 但端口不在
// [1,65535] 的行静默丢弃 —— 代理列表由人维护, 噪声不算错误。
// 行内显式 scheme 优先于 hint, "https" 归一化为 "http"。
// max > 0 时在达到上限后停止解析。
func ParseText(text, hint string, max int) []*model.Proxy {
	var proxies []*model.Proxy

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := lineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		port, err := strconv.Atoi(m[lineRegex.SubexpIndex("port")])
		if err != nil || port < 1 || port > 65535 {
			continue
		}

		protocol := m[lineRegex.SubexpIndex("scheme")]
		if protocol == "" {
			protocol = hint
		} else if protocol == "https" {
			protocol = "http"
		}

		proxies = append(proxies, &model.Proxy{
			Protocol: protocol,
			Host:     m[lineRegex.SubexpIndex("host")],
			Port:     port,
			Username: m[lineRegex.SubexpIndex("user")],
			Password: m[lineRegex.SubexpIndex("pass")],
		})

		if max > 0 && len(proxies) >= max {
			l := logger.WithComponent("ProxyPool/Parser")
			l.Warn().
				Int("max", max).
				Msg("Per-source proxy cap reached, remaining lines skipped.")
			break
		}
	}

	return proxies
}
