package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/linkcounter/internal/models"
)

// ValidateFlags 验证命令行标志
func ValidateFlags(targetURL, urlFile string, batchDelay int) error {
	if targetURL != "" && urlFile != "" {
		return fmt.Errorf("--url 和 --url-file 不能同时使用")
	}

	if targetURL != "" {
		if err := models.ValidateURL(targetURL); err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
	}

	if batchDelay < 0 || batchDelay > 60 {
		return fmt.Errorf("批量延迟必须在0-60秒之间,当前值: %d", batchDelay)
	}

	return nil
}

// NormalizeURL 规范化URL,没有协议时默认使用https
func NormalizeURL(urlStr string) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}
