package checker

import (
	"encoding/json"
	"net"
	"strings"
)

// exitIPResponse 覆盖常见回显服务的 JSON 形状
// (httpbin 返回 "origin", 多数 ip-echo 服务返回 "ip")。
type exitIPResponse struct {
	Origin string `json:"origin"`
	IP     string `json:"ip"`
}

// ParseExitIP 从检查端点的响应体中提取出口地址。
// 优先按 JSON 解析, 失败则按纯文本处理; 带端口的 IPv4 去掉端口。
// 无法识别的非空文本原样返回 —— 端点格式由用户配置, 不强加形状。
func ParseExitIP(body string) string {
	text := strings.TrimSpace(body)
	if text == "" {
		return ""
	}

	var parsed exitIPResponse
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		if parsed.Origin != "" {
			text = parsed.Origin
		} else if parsed.IP != "" {
			text = parsed.IP
		}
	}

	if host, _, err := net.SplitHostPort(text); err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	}
	return text
}
