package utils

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/RecoveryAshes/linkcounter/internal/models"
)

// ReadURLsFromFile 从文件中读取URL列表
func ReadURLsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开URL文件失败: %w", err)
	}
	defer file.Close()

	urls, err := ReadURLs(file)
	if err != nil {
		return nil, err
	}

	Infof("从文件加载了 %d 个URL", len(urls))
	return urls, nil
}

// ReadURLs 逐行读取URL,跳过空行、注释行和无效URL
func ReadURLs(r io.Reader) ([]string, error) {
	urls := make([]string, 0)
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := models.ValidateURL(line); err != nil {
			Warnf("跳过无效URL (行 %d): %s - %v", lineNum, line, err)
			continue
		}

		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取URL文件失败: %w", err)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("URL文件中没有有效的URL")
	}
	return urls, nil
}

// HostDir 将URL的主机部分转换为可用作目录名的字符串
// 例如 https://example.com:8080/a -> example.com_8080
func HostDir(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}

	replacer := strings.NewReplacer(":", "_", "/", "_", "\\", "_", "[", "", "]", "")
	return replacer.Replace(strings.ToLower(parsed.Host))
}
