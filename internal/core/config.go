package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/linkcounter/internal/models"
	"github.com/RecoveryAshes/linkcounter/internal/utils"
	"github.com/spf13/viper"
)

// MaxConfigFileSize 配置文件最大大小 (1MB)
const MaxConfigFileSize = 1 * 1024 * 1024

// 报告格式
const (
	ExportTXT = "txt"
	ExportCSV = "csv"
)

// Config 应用程序配置
type Config struct {
	Scan    models.ScanConfig `mapstructure:"scan"`
	Logging LoggingConfig     `mapstructure:"logging"`
	Output  OutputConfig      `mapstructure:"output"`
	HTTP    HTTPConfig        `mapstructure:"http"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Exports          []string `mapstructure:"exports"`           // 导出格式: txt, csv
	HTML             bool     `mapstructure:"html"`              // 保存弹出层最终视图
	DomainSeparation bool     `mapstructure:"domain_separation"` // 按主机名分目录保存
}

// HTTPConfig 获取页面时附加的HTTP头部
type HTTPConfig struct {
	Headers map[string]string `mapstructure:"headers"`
}

// LoadConfig 加载配置文件,未指定路径时搜索默认位置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		if err := checkFileSize(configPath); err != nil {
			return nil, err
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".linkcounter"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
		// 没有配置文件时使用默认值
	} else {
		utils.Debugf("使用配置文件: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{
			FilePath: v.ConfigFileUsed(),
			Cause:    fmt.Errorf("配置绑定失败: %w", err),
		}
	}

	if config.HTTP.Headers == nil {
		config.HTTP.Headers = make(map[string]string)
	}

	return &config, nil
}

func checkFileSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &models.ConfigError{FilePath: path, Cause: err}
	}
	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: path,
			Cause:    fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)", info.Size(), MaxConfigFileSize),
		}
	}
	return nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.mode", string(models.ModeStatic))
	v.SetDefault("scan.wait_time", 3)
	v.SetDefault("scan.headless", true)
	v.SetDefault("scan.locale", "en")
	v.SetDefault("scan.download_dir", "output")
	v.SetDefault("scan.safety_threshold", 512)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("output.exports", []string{ExportTXT})
	v.SetDefault("output.html", false)
	v.SetDefault("output.domain_separation", true)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if err := c.Scan.Validate(); err != nil {
		return err
	}
	for _, format := range c.Output.Exports {
		if format != ExportTXT && format != ExportCSV {
			return fmt.Errorf("无效的导出格式: %s (有效值: txt, csv)", format)
		}
	}
	return nil
}

// LogConfig 转换为日志系统配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// CLIFlags 命令行覆盖项,零值表示未设置
type CLIFlags struct {
	Mode      string
	WaitTime  int // <0 表示未设置
	Headless  *bool
	Locale    string
	OutputDir string
	Exports   []string
	HTML      *bool
	LogLevel  string
}

// MergeCLIFlags 合并命令行参数到配置,命令行优先
func (c *Config) MergeCLIFlags(flags CLIFlags) {
	if flags.Mode != "" {
		c.Scan.Mode = models.ScanMode(strings.ToLower(flags.Mode))
	}
	if flags.WaitTime >= 0 {
		c.Scan.WaitTime = flags.WaitTime
	}
	if flags.Headless != nil {
		c.Scan.Headless = *flags.Headless
	}
	if flags.Locale != "" {
		c.Scan.Locale = flags.Locale
	}
	if flags.OutputDir != "" {
		c.Scan.DownloadDir = flags.OutputDir
	}
	if len(flags.Exports) > 0 {
		exports := make([]string, 0, len(flags.Exports))
		for _, format := range flags.Exports {
			exports = append(exports, strings.ToLower(strings.TrimSpace(format)))
		}
		c.Output.Exports = exports
	}
	if flags.HTML != nil {
		c.Output.HTML = *flags.HTML
	}
	if flags.LogLevel != "" {
		c.Logging.Level = flags.LogLevel
	}
}
