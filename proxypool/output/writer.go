package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"proxyharvest/internal/shared/logger"
	"proxyharvest/internal/shared/types"
	"proxyharvest/proxypool/model"
)

// Writer 将最终结果序列化到输出目录。
// 核心流水线对文件格式与路径一无所知, 只把有序结果交给这里。
type Writer struct {
	cfg   types.OutputConf
	runID string
}

// NewWriter 创建一个新的 Writer, 并为本次运行生成唯一 ID。
func NewWriter(cfg types.OutputConf) *Writer {
	return &Writer{
		cfg:   cfg,
		runID: uuid.NewString(),
	}
}

// RunID 返回本次运行的唯一标识。
func (w *Writer) RunID() string {
	return w.runID
}

// Save 把结果写入配置启用的所有输出格式。结果为空时跳过写入。
func (w *Writer) Save(results []*model.Result) error {
	l := logger.WithComponent("ProxyPool/Output")

	if len(results) == 0 {
		l.Warn().Msg("No proxies to save.")
		return nil
	}

	if err := os.MkdirAll(w.cfg.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if w.cfg.JSON {
		if err := w.saveJSON(results); err != nil {
			return err
		}
	}
	if w.cfg.TXT {
		if err := w.saveTXT(results); err != nil {
			return err
		}
	}

	l.Info().Int("count", len(results)).Str("dir", w.cfg.Dir).Msg("Results saved.")
	return nil
}

// proxyJSON 是单个代理的序列化形状。可选字段缺省时不输出,
// 未检查的结果不携带度量字段。
type proxyJSON struct {
	Protocol string   `json:"protocol"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Username string   `json:"username,omitempty"`
	Password string   `json:"password,omitempty"`
	Timeout  *float64 `json:"timeout,omitempty"`
	ExitIP   string   `json:"exit_ip,omitempty"`
}

type jsonDocument struct {
	RunID       string      `json:"run_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Proxies     []proxyJSON `json:"proxies"`
}

func (w *Writer) saveJSON(results []*model.Result) error {
	doc := jsonDocument{
		RunID:       w.runID,
		GeneratedAt: time.Now().UTC(),
		Proxies:     make([]proxyJSON, 0, len(results)),
	}

	for _, r := range results {
		entry := proxyJSON{
			Protocol: r.Proxy.Protocol,
			Host:     r.Proxy.Host,
			Port:     r.Proxy.Port,
			Username: r.Proxy.Username,
			Password: r.Proxy.Password,
		}
		if r.Checked && r.OK {
			elapsed := r.ElapsedSeconds
			entry.Timeout = &elapsed
			entry.ExitIP = r.ExitIP
		}
		doc.Proxies = append(doc.Proxies, entry)
	}

	compact, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.cfg.Dir, "proxies.json"), compact, 0644); err != nil {
		return err
	}

	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return os.WriteFile(filepath.Join(w.cfg.Dir, "proxies_pretty.json"), pretty, 0644)
}

func (w *Writer) saveTXT(results []*model.Result) error {
	txtDir := filepath.Join(w.cfg.Dir, "proxies")
	if err := os.MkdirAll(txtDir, 0755); err != nil {
		return fmt.Errorf("failed to create txt directory: %w", err)
	}

	// all.txt 带 scheme 前缀; 按协议分组的文件不带。
	var all strings.Builder
	grouped := make(map[string]*strings.Builder)
	for _, r := range results {
		all.WriteString(r.Proxy.URL(true))
		all.WriteString("\n")

		sb, ok := grouped[r.Proxy.Protocol]
		if !ok {
			sb = &strings.Builder{}
			grouped[r.Proxy.Protocol] = sb
		}
		sb.WriteString(r.Proxy.URL(false))
		sb.WriteString("\n")
	}

	if err := os.WriteFile(filepath.Join(txtDir, "all.txt"), []byte(all.String()), 0644); err != nil {
		return err
	}
	for protocol, sb := range grouped {
		path := filepath.Join(txtDir, protocol+".txt")
		if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
			return err
		}
	}
	return nil
}
