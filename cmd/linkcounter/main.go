package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/linkcounter/internal/core"
	"github.com/RecoveryAshes/linkcounter/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string
	validateConfig bool

	// 扫描参数
	targetURL string
	urlFile   string
	mode      string
	waitTime  int
	headless  bool
	lang      string
	outputDir string
	exports   []string
	search    string
	saveHTML  bool

	// 批量处理参数
	batchDelay      int
	continueOnError bool
)

// appConfig 在PersistentPreRunE中加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "linkcounter",
	Short: "统计页面中的内部和外部链接",
	Long: `linkcounter - 页面链接统计工具

打开页面后统计所有超链接,按主机名区分内部链接和外部链接:
  • 静态获取(Colly)或浏览器渲染(Rod)
  • 导出TXT/CSV报告
  • 按URL搜索过滤链接表格
  • 批量URL处理
  • 自定义HTTP请求头

示例:
  linkcounter -u https://example.com --export txt --export csv
  linkcounter -u https://example.com -m dynamic --search github --html
  linkcounter -f urls.txt --lang zh_CN -o reports

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		flags := core.CLIFlags{WaitTime: -1, LogLevel: logLevel}
		if verbose && logLevel == "" {
			flags.LogLevel = "debug"
		}
		if cmd.Flags().Changed("mode") {
			flags.Mode = mode
		}
		if cmd.Flags().Changed("wait") {
			flags.WaitTime = waitTime
		}
		if cmd.Flags().Changed("headless") {
			flags.Headless = &headless
		}
		if cmd.Flags().Changed("lang") {
			flags.Locale = lang
		}
		if cmd.Flags().Changed("output") {
			flags.OutputDir = outputDir
		}
		if cmd.Flags().Changed("export") {
			flags.Exports = exports
		}
		if cmd.Flags().Changed("html") {
			flags.HTML = &saveHTML
		}
		config.MergeCLIFlags(flags)

		if err := utils.InitLogger(config.LogConfig()); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}
		if verbose {
			utils.Info("详细模式已启用")
		}

		appConfig = config
		return nil
	},
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	// Ctrl+C 取消正在进行的扫描,宿主会关闭浏览器
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	headerManager, err := core.NewHeaderManager(appConfig.HTTP.Headers, headers)
	if err != nil {
		return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}

	if validateConfig {
		return printValidation(headerManager)
	}

	if targetURL == "" && urlFile == "" {
		return cmd.Help()
	}

	if targetURL != "" {
		normalized, err := NormalizeURL(targetURL)
		if err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
		targetURL = normalized
	}

	if err := ValidateFlags(targetURL, urlFile, batchDelay); err != nil {
		return err
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}

	scanner, err := core.NewScanner(appConfig.Scan, core.ScanOptions{
		Exports:          appConfig.Output.Exports,
		HTML:             appConfig.Output.HTML,
		DomainSeparation: urlFile != "" && appConfig.Output.DomainSeparation,
		Search:           cmd.Flags().Changed("search"),
		Query:            search,
	}, headerManager)
	if err != nil {
		return fmt.Errorf("创建扫描器失败: %w", err)
	}

	if urlFile != "" {
		urls, err := utils.ReadURLsFromFile(urlFile)
		if err != nil {
			return fmt.Errorf("读取URL文件失败: %w", err)
		}

		batch := core.NewBatchScanner(scanner, appConfig.Scan.DownloadDir, batchDelay, continueOnError)
		summary, err := batch.ScanBatch(ctx, urls)
		if err != nil {
			return fmt.Errorf("批量扫描失败: %w", err)
		}
		if summary.FailCount > 0 && !continueOnError {
			return fmt.Errorf("批量扫描中止: %d 个URL失败", summary.FailCount)
		}
		return nil
	}

	result, err := scanner.Scan(ctx, targetURL)
	if err != nil {
		return fmt.Errorf("扫描失败: %w", err)
	}

	printResult(result)
	return nil
}

func printValidation(headerManager *core.HeaderManager) error {
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	safeHeaders := headerManager.GetSafeHeaders()
	utils.Info("配置验证通过")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for name, value := range safeHeaders {
		utils.Infof("  %s: %s", name, value)
	}
	return nil
}

func printResult(result *core.ScanResult) {
	fmt.Println("==================================================")
	fmt.Printf("📊 %s\n", result.URL)
	fmt.Println("==================================================")
	fmt.Printf("全部链接: %d\n", result.Total)
	fmt.Printf("内部链接: %d\n", result.Internal)
	fmt.Printf("外部链接: %d\n", result.External)
	for _, path := range result.Reports {
		fmt.Printf("📄 报告: %s\n", path)
	}
	if result.View == "search" {
		fmt.Printf("🔍 匹配的链接: %d\n", len(result.VisibleRows))
		for _, url := range result.VisibleRows {
			fmt.Printf("  %s\n", url)
		}
	}
	if result.HTMLPath != "" {
		fmt.Printf("🖼️  视图: %s\n", result.HTMLPath)
	}
	fmt.Printf("⏱️  耗时: %.2f秒\n", result.Duration)
	fmt.Println("==================================================")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	// 不需要加载配置
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("linkcounter %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	// 扫描参数
	rootCmd.Flags().StringVarP(&targetURL, "url", "u", "", "目标URL (必需,除非使用 --url-file)")
	rootCmd.Flags().StringVarP(&urlFile, "url-file", "f", "", "包含URL列表的文件路径")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "static", "获取模式 (static|dynamic)")
	rootCmd.Flags().IntVarP(&waitTime, "wait", "w", 3, "页面等待时间(秒)")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "无头浏览器模式")
	rootCmd.Flags().StringVar(&lang, "lang", "en", "界面语言 (en|zh_CN)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "output", "报告保存目录")
	rootCmd.Flags().StringSliceVar(&exports, "export", []string{"txt"}, "导出格式 (txt|csv),可多次指定")
	rootCmd.Flags().StringVarP(&search, "search", "s", "", "切换到搜索视图并按URL过滤")
	rootCmd.Flags().BoolVar(&saveHTML, "html", false, "保存弹出层最终视图为HTML")

	// 批量处理参数
	rootCmd.Flags().IntVar(&batchDelay, "batch-delay", 1, "批量处理URL间延迟(秒)")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "遇到错误继续处理")

	rootCmd.AddCommand(versionCmd, doctorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
