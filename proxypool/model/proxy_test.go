package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProxyURL(t *testing.T) {
	p := &Proxy{Protocol: "socks5", Host: "1.2.3.4", Port: 1080}
	assert.Equal(t, "socks5://1.2.3.4:1080", p.URL(true))
	assert.Equal(t, "1.2.3.4:1080", p.URL(false))

	p.Username = "u"
	p.Password = "p"
	assert.Equal(t, "socks5://u:p@1.2.3.4:1080", p.URL(true))
	assert.Equal(t, "u:p@1.2.3.4:1080", p.URL(false))
}

func TestProxyKeyIgnoresCredentials(t *testing.T) {
	a := &Proxy{Protocol: "http", Host: "1.2.3.4", Port: 8080}
	b := &Proxy{Protocol: "http", Host: "1.2.3.4", Port: 8080, Username: "u", Password: "p"}
	assert.Equal(t, a.Key(), b.Key())

	c := &Proxy{Protocol: "socks4", Host: "1.2.3.4", Port: 8080}
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestCompareAddress(t *testing.T) {
	ip := func(host string, port int) *Proxy { return &Proxy{Host: host, Port: port} }

	assert.Negative(t, CompareAddress(ip("2.0.0.1", 80), ip("10.0.0.1", 80)), "octet order, not string order")
	assert.Positive(t, CompareAddress(ip("10.0.0.1", 80), ip("2.0.0.1", 80)))
	assert.Negative(t, CompareAddress(ip("1.1.1.1", 79), ip("1.1.1.1", 80)))
	assert.Zero(t, CompareAddress(ip("1.1.1.1", 80), ip("1.1.1.1", 80)))

	// 非 IP 主机排在 IP 之后, 彼此按字典序
	assert.Negative(t, CompareAddress(ip("255.255.255.255", 80), ip("a.example.com", 80)))
	assert.Negative(t, CompareAddress(ip("a.example.com", 80), ip("b.example.com", 80)))
}
