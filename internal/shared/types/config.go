package types

// SourceEntry 定义了一个代理来源的完整配置。
// 这是 configs/sources.json 文件的核心数据结构。
type SourceEntry struct {
	// Protocol 是该来源列出的代理的协议提示: "http", "socks4" 或 "socks5"。
	// 行内显式的 scheme 前缀优先于此提示。
	Protocol string `json:"protocol"`

	// Location 是来源位置: http(s) URL、本地路径或 "file://" 路径。
	Location string `json:"location"`

	// Kind 是来源类型: "text" (默认, 纯文本列表) 或 "html" (表格页面)。
	Kind string `json:"kind,omitempty"`

	// RowSelector 仅用于 html 来源, 选择表格行; 为空时使用 "table tbody tr"。
	RowSelector string `json:"rowSelector,omitempty"`
}

// ScrapeConf 包含抓取阶段的配置
type ScrapeConf struct {
	TimeoutSeconds int    `ini:"timeout_seconds"`
	MaxPerSource   int    `ini:"max_per_source"` // 0 = 不限制
	UserAgent      string `ini:"user_agent"`
}

// CheckConf 包含验证阶段的配置
type CheckConf struct {
	Enabled        bool   `ini:"enabled"`
	URL            string `ini:"url"`
	TimeoutSeconds int    `ini:"timeout_seconds"`
	MaxConcurrent  int    `ini:"max_concurrent"`
	Progress       bool   `ini:"progress"`
}

// OutputConf 包含输出阶段的配置
type OutputConf struct {
	Dir  string `ini:"dir"`
	Sort string `ini:"sort"` // "speed" 或 "address"
	TXT  bool   `ini:"txt"`
	JSON bool   `ini:"json"`
}

// LogConf contains logging specific configuration
type LogConf struct {
	Level string `ini:"level"`
}

// Config 是统一配置结构体 (行为配置; 来源列表单独存放于 sources.json)
type Config struct {
	ScrapeConf `ini:"scrape"`
	CheckConf  `ini:"check"`
	OutputConf `ini:"output"`
	LogConf    `ini:"log"`
}
