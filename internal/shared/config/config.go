package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/ini.v1"

	"proxyharvest/internal/shared/types"
)

// Default 返回内置默认行为配置, ini 文件中的值在其之上覆盖。
func Default() *types.Config {
	cfg := new(types.Config)
	cfg.ScrapeConf = types.ScrapeConf{
		TimeoutSeconds: 60,
		MaxPerSource:   100000,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
	cfg.CheckConf = types.CheckConf{
		Enabled:        true,
		URL:            "https://api.ipify.org",
		TimeoutSeconds: 60,
		MaxConcurrent:  1024,
		Progress:       true,
	}
	cfg.OutputConf = types.OutputConf{
		Dir:  "./out",
		Sort: "speed",
		TXT:  true,
		JSON: true,
	}
	cfg.LogConf = types.LogConf{Level: "info"}
	return cfg
}

// LoadIni 只加载 proxyharvest.ini 行为配置文件。
// 文件不存在时保留默认值, 不视为错误。
func LoadIni(cfg *types.Config, fileName string) error {
	iniFile, err := ini.Load(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return err
	}
	overrideFromEnvInt(&cfg.CheckConf.MaxConcurrent, "PROXYHARVEST_MAX_CONCURRENT")
	overrideFromEnvInt(&cfg.CheckConf.TimeoutSeconds, "PROXYHARVEST_CHECK_TIMEOUT")
	overrideFromEnvStr(&cfg.CheckConf.URL, "PROXYHARVEST_CHECK_URL")
	return nil
}

// LoadSources 加载 sources.json 数据文件。
func LoadSources(fileName string) ([]*types.SourceEntry, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		// 如果文件不存在，返回内置默认来源列表而不是错误
		if os.IsNotExist(err) {
			return DefaultSources(), nil
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var entries []*types.SourceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sources.json: %w", err)
	}
	return entries, nil
}

// SaveSources 将来源列表保存到 sources.json。
func SaveSources(fileName string, entries []*types.SourceEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal source entries: %w", err)
	}
	return os.WriteFile(fileName, data, 0644)
}

// DefaultSources 返回内置的公开代理列表来源。
func DefaultSources() []*types.SourceEntry {
	return []*types.SourceEntry{
		{Protocol: "http", Location: "https://api.proxyscrape.com/v3/free-proxy-list/get?request=getproxies&protocol=http"},
		{Protocol: "http", Location: "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/refs/heads/master/http.txt"},
		{Protocol: "socks4", Location: "https://api.proxyscrape.com/v3/free-proxy-list/get?request=getproxies&protocol=socks4"},
		{Protocol: "socks4", Location: "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/refs/heads/master/socks4.txt"},
		{Protocol: "socks5", Location: "https://api.proxyscrape.com/v3/free-proxy-list/get?request=getproxies&protocol=socks5"},
		{Protocol: "socks5", Location: "https://raw.githubusercontent.com/TheSpeedX/PROXY-List/refs/heads/master/socks5.txt"},
	}
}

func overrideFromEnvInt(target *int, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if intValue, err := strconv.Atoi(envValue); err == nil {
			*target = intValue
		}
	}
}

func overrideFromEnvStr(target *string, envName string) {
	if envValue := os.Getenv(envName); envValue != "" {
		*target = envValue
	}
}
