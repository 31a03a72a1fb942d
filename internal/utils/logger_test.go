package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func initTestLogger(t *testing.T, level string) string {
	t.Helper()

	tempDir := t.TempDir()
	config := DefaultLogConfig()
	config.Level = level
	config.LogDir = tempDir
	config.Compress = false
	config.Quiet = true

	if err := InitLogger(config); err != nil {
		t.Fatalf("初始化日志器失败: %v", err)
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	return tempDir
}

func readLog(t *testing.T, dir, name string) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	return string(content)
}

func TestInitLogger(t *testing.T) {
	dir := initTestLogger(t, "debug")

	Info("测试信息日志")
	Debugf("测试调试日志 %d", 1)

	content := readLog(t, dir, MainLogFile)
	if !strings.Contains(content, "测试信息日志") || !strings.Contains(content, "测试调试日志 1") {
		t.Errorf("主日志文件缺少内容: %s", content)
	}
}

func TestLogLevels(t *testing.T) {
	dir := initTestLogger(t, "info")

	Infof("格式化信息日志: %s", "测试")
	Warnf("格式化警告日志: %d", 123)
	Debugf("格式化调试日志: %v", true)

	content := readLog(t, dir, MainLogFile)
	if !strings.Contains(content, "格式化信息日志: 测试") {
		t.Error("info日志应写入主日志文件")
	}
	if !strings.Contains(content, "格式化警告日志: 123") {
		t.Error("warn日志应写入主日志文件")
	}
	if strings.Contains(content, "格式化调试日志") {
		t.Error("info级别下不应写入debug日志")
	}
}

func TestErrorLogFile(t *testing.T) {
	dir := initTestLogger(t, "debug")

	Warn("只是警告")
	Errorf("真正的错误: %s", "boom")

	errors := readLog(t, dir, ErrorLogFile)
	if !strings.Contains(errors, "真正的错误: boom") {
		t.Errorf("错误日志文件缺少error日志: %s", errors)
	}
	if strings.Contains(errors, "只是警告") {
		t.Error("错误日志文件不应包含warn日志")
	}

	main := readLog(t, dir, MainLogFile)
	if !strings.Contains(main, "只是警告") || !strings.Contains(main, "真正的错误") {
		t.Error("主日志文件应包含所有级别")
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	initTestLogger(t, "verbose")

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("无效级别应回退为info, 得到 %s", zerolog.GlobalLevel())
	}
}

func TestDefaultLogConfig(t *testing.T) {
	config := DefaultLogConfig()

	if config.Level != "info" {
		t.Errorf("默认日志级别错误: 期望 'info', 得到 '%s'", config.Level)
	}
	if config.LogDir != "logs" {
		t.Errorf("默认日志目录错误: 期望 'logs', 得到 '%s'", config.LogDir)
	}
	if config.MaxSize != 10 || config.MaxBackups != 3 || config.MaxAge != 28 {
		t.Errorf("默认轮转配置错误: %+v", config)
	}
	if !config.Compress {
		t.Error("默认应该启用压缩")
	}
	if config.Quiet {
		t.Error("默认应输出到控制台")
	}
}
