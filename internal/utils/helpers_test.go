package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/RecoveryAshes/linkcounter/internal/models"
)

func TestReadURLs(t *testing.T) {
	input := strings.Join([]string{
		"# 注释行",
		"https://example.com/",
		"",
		"   http://example.org/path   ",
		"ftp://example.net/",
		"not a url",
		"https://golang.org",
	}, "\n")

	urls, err := ReadURLs(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadURLs() error = %v", err)
	}

	want := []string{"https://example.com/", "http://example.org/path", "https://golang.org"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("ReadURLs() = %v, want %v", urls, want)
	}
}

func TestReadURLs_Empty(t *testing.T) {
	if _, err := ReadURLs(strings.NewReader("# 只有注释\n\n")); err == nil {
		t.Error("没有有效URL时应返回错误")
	}
}

func TestReadURLsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte("https://example.com/\n"), 0644); err != nil {
		t.Fatalf("写入URL文件失败: %v", err)
	}

	urls, err := ReadURLsFromFile(path)
	if err != nil {
		t.Fatalf("ReadURLsFromFile() error = %v", err)
	}
	if len(urls) != 1 {
		t.Errorf("期望1个URL, 得到 %d", len(urls))
	}

	if _, err := ReadURLsFromFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("文件不存在时应返回错误")
	}
}

func TestHostDir(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://Example.com/a/b", "example.com"},
		{"http://example.com:8080/", "example.com_8080"},
		{"http://[::1]:3000/", "__1_3000"},
		{"/relative/path", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := HostDir(tt.url); got != tt.want {
				t.Errorf("HostDir(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestReporter_SaveJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	reporter := NewReporter(dir)

	path, err := reporter.SaveJSON("summary.json", map[string]int{"total": 3})
	if err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取报告失败: %v", err)
	}

	var got map[string]int
	if err := json.Unmarshal(content, &got); err != nil {
		t.Fatalf("报告不是有效的JSON: %v", err)
	}
	if got["total"] != 3 {
		t.Errorf("报告内容错误: %v", got)
	}
}

func TestNewProgressBar(t *testing.T) {
	bar := NewProgressBar(3, "扫描", io.Discard)
	for i := 0; i < 3; i++ {
		if err := bar.Add(1); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if !bar.IsFinished() {
		t.Error("进度条应已完成")
	}
}

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		value     string
		wantField string
	}{
		{name: "合法头部", header: "X-Custom-Header", value: "value 1"},
		{name: "禁止的头部", header: "host", value: "example.com", wantField: "name"},
		{name: "空名称", header: "", value: "x", wantField: "name"},
		{name: "名称含空格", header: "X Custom", value: "x", wantField: "name"},
		{name: "值含控制字符", header: "X-Test", value: "a\nb", wantField: "value"},
		{name: "值含非ASCII", header: "X-Test", value: "中文", wantField: "value"},
		{name: "值过长", header: "X-Test", value: strings.Repeat("a", MaxHeaderValueLength+1), wantField: "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader(tt.header, tt.value)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateHeader() error = %v", err)
				}
				return
			}

			var validationErr *models.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("期望ValidationError, 得到 %v", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("Field = %s, want %s", validationErr.Field, tt.wantField)
			}
		})
	}
}

func TestValidateHeaders(t *testing.T) {
	valid := http.Header{"User-Agent": {"test"}, "Accept": {"*/*"}}
	if err := ValidateHeaders(valid); err != nil {
		t.Errorf("ValidateHeaders() error = %v", err)
	}

	invalid := http.Header{"Accept": {"*/*"}, "Content-Length": {"10"}}
	if err := ValidateHeaders(invalid); err == nil {
		t.Error("包含禁止头部时应返回错误")
	}
}

func TestRedactHeaders(t *testing.T) {
	headers := http.Header{
		"Authorization": {"Bearer abcdef"},
		"X-Api-Key":     {"1234567890abcdef"},
		"X-Secret":      {"short"},
		"User-Agent":    {"linkcounter"},
	}

	got := RedactHeaders(headers)
	want := map[string]string{
		"Authorization": "Bearer ***",
		"X-Api-Key":     "1234***cdef",
		"X-Secret":      "***",
		"User-Agent":    "linkcounter",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RedactHeaders() = %v, want %v", got, want)
	}
}
