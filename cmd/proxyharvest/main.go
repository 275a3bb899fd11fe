package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"proxyharvest/internal/shared/config"
	"proxyharvest/internal/shared/logger"
	"proxyharvest/proxypool"
	"proxyharvest/proxypool/output"
)

func main() {
	configDir := flag.String("configdir", "configs", "Path to config directory")
	noCheck := flag.Bool("no-check", false, "Skip proxy checking (scrape only)")
	outputDir := flag.String("output", "", "Output directory (overrides config)")
	sortMode := flag.String("sort", "", "Sort mode: speed or address (overrides config)")
	flag.Parse()

	// .env 可选, 用于覆盖环境变量形式的配置
	_ = godotenv.Load()

	iniPath := filepath.Join(*configDir, "proxyharvest.ini")
	sourcesPath := filepath.Join(*configDir, "sources.json")

	// 1. 加载 .ini 行为配置
	cfg := config.Default()
	if err := config.LoadIni(cfg, iniPath); err != nil {
		// Use standard fmt before logger is initialized.
		fmt.Fprintf(os.Stderr, "Fatal: Failed to load config file '%s': %v\n", iniPath, err)
		os.Exit(1)
	}

	if *noCheck {
		cfg.CheckConf.Enabled = false
	}
	if *outputDir != "" {
		cfg.OutputConf.Dir = *outputDir
	}
	if *sortMode != "" {
		cfg.OutputConf.Sort = *sortMode
	}

	// 1.1 初始化日志系统
	if err := logger.Init(cfg.LogConf); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// 2. 加载 sources.json 数据配置
	sources, err := config.LoadSources(sourcesPath)
	if err != nil {
		logger.Fatal().Err(err).Msgf("Failed to load sources file '%s'", sourcesPath)
	}
	if len(sources) == 0 {
		logger.Fatal().Msgf("No proxy sources configured in '%s'", sourcesPath)
	}

	// 3. 运行流水线并写出结果
	writer := output.NewWriter(cfg.OutputConf)
	logger.Info().Str("run_id", writer.RunID()).Int("sources", len(sources)).Msgf("proxyharvest starting")

	manager := proxypool.NewManager(cfg, sources)
	results := manager.Run()

	if len(results) == 0 {
		logger.Warn().Msgf("No working proxies found")
	}

	if err := writer.Save(results); err != nil {
		logger.Fatal().Err(err).Msgf("Failed to write output")
	}
}
