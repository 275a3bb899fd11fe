package model

import (
	"fmt"
	"net"
	"strings"
)

// Proxy 定义了一个代理端点，是整个模块的核心数据结构。
// 它在内存中使用，并通过 output 包序列化为 JSON 与纯文本。
type Proxy struct {
	// Protocol 是 "http", "socks4" 或 "socks5"。
	// 来源行内显式的 scheme 优先于来源配置的协议提示。
	Protocol string

	// Host 是主机名或 IPv4 字面量, 解析阶段不强制为 IP。
	Host string
	Port int

	// 可选凭据, 为空表示缺省。同一 (Protocol, Host, Port) 键下
	// 以首见记录为准, 仅当首见记录无凭据时回填后见凭据。
	Username string
	Password string
}

// Key 返回去重键。凭据不参与键: 同一网络端点只计一次。
func (p *Proxy) Key() string {
	return fmt.Sprintf("%s|%s|%d", p.Protocol, p.Host, p.Port)
}

// HasAuth reports whether the proxy carries credentials.
func (p *Proxy) HasAuth() bool {
	return p.Username != "" && p.Password != ""
}

// URL 将代理渲染为 URL 形式, includeProtocol 控制是否带 scheme 前缀。
func (p *Proxy) URL(includeProtocol bool) string {
	var sb strings.Builder
	if includeProtocol {
		sb.WriteString(p.Protocol)
		sb.WriteString("://")
	}
	if p.HasAuth() {
		sb.WriteString(p.Username)
		sb.WriteString(":")
		sb.WriteString(p.Password)
		sb.WriteString("@")
	}
	fmt.Fprintf(&sb, "%s:%d", p.Host, p.Port)
	return sb.String()
}

// Addr 返回 host:port 形式的拨号地址。
func (p *Proxy) Addr() string {
	return net.JoinHostPort(p.Host, fmt.Sprintf("%d", p.Port))
}

// Reason 标识一次探测失败的类别。
type Reason string

const (
	ReasonTimeout        Reason = "timeout"
	ReasonConnectError   Reason = "connect_error"
	ReasonHandshakeError Reason = "handshake_error"
	ReasonBadResponse    Reason = "bad_response"
)

// Result 是一次探测的结果: 代理本身加上可选的度量。
// 每个候选每次运行只产生一个 Result, 创建后不再修改。
// 未执行检查时 Checked 为 false 且度量字段保持零值缺省。
type Result struct {
	Proxy *Proxy

	Checked bool
	OK      bool
	Reason  Reason

	// ElapsedSeconds 是从开始握手到收到响应体的耗时 (秒)。
	ElapsedSeconds float64

	// ExitIP 是检查端点观测到的出口地址, 用于确认流量确实经过代理。
	ExitIP string
}

// CompareAddress orders proxies by address: IPv4 hosts numerically by octet,
// non-IP hosts lexicographically after all IPs, then by port.
func CompareAddress(a, b *Proxy) int {
	ipA := net.ParseIP(a.Host).To4()
	ipB := net.ParseIP(b.Host).To4()
	switch {
	case ipA != nil && ipB == nil:
		return -1
	case ipA == nil && ipB != nil:
		return 1
	case ipA != nil && ipB != nil:
		for i := 0; i < 4; i++ {
			if ipA[i] != ipB[i] {
				if ipA[i] < ipB[i] {
					return -1
				}
				return 1
			}
		}
	default:
		if c := strings.Compare(a.Host, b.Host); c != 0 {
			return c
		}
	}
	return a.Port - b.Port
}
