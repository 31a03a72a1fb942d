package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		locale    string
		wantTag   language.Tag
		wantTotal string
	}{
		{"默认英文", "", language.English, "Total"},
		{"英文", "en", language.English, "Total"},
		{"美式英文", "en-US", language.English, "Total"},
		{"下划线中文", "zh_CN", language.SimplifiedChinese, "全部"},
		{"连字符中文", "zh-CN", language.SimplifiedChinese, "全部"},
		{"不支持的语言回退英文", "fr", language.English, "Total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := Load(tt.locale)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if catalog.Tag() != tt.wantTag {
				t.Errorf("Tag() = %v, want %v", catalog.Tag(), tt.wantTag)
			}
			if got := catalog.GetMessage(KeyTotal); got != tt.wantTotal {
				t.Errorf("GetMessage(total) = %q, want %q", got, tt.wantTotal)
			}
		})
	}
}

func TestLoad_InvalidLocale(t *testing.T) {
	if _, err := Load("!!"); err == nil {
		t.Error("无效的语言标识应返回错误")
	}
}

func TestCatalog_AllKeysPresent(t *testing.T) {
	keys := []string{
		KeyTotal, KeyInternal, KeyExternal, KeyExportTXT, KeyExportCSV,
		KeySearch, KeyURL, KeyText, KeyReportName,
	}

	for _, locale := range []string{"en", "zh_CN"} {
		catalog, err := Load(locale)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", locale, err)
		}
		for _, key := range keys {
			if catalog.GetMessage(key) == "" {
				t.Errorf("[%s] 缺少消息: %s", locale, key)
			}
		}
	}
}

func TestCatalog_UnknownKey(t *testing.T) {
	catalog, err := Load("en")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := catalog.GetMessage("missing"); got != "" {
		t.Errorf("未知键应返回空字符串, 得到 %q", got)
	}
}
