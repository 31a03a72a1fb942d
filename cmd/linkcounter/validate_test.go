package main

import "testing"

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name       string
		targetURL  string
		urlFile    string
		batchDelay int
		wantErr    bool
	}{
		{name: "单个URL", targetURL: "https://example.com", batchDelay: 1},
		{name: "URL文件", urlFile: "urls.txt", batchDelay: 0},
		{name: "同时指定", targetURL: "https://example.com", urlFile: "urls.txt", wantErr: true},
		{name: "非HTTP协议", targetURL: "ftp://example.com", wantErr: true},
		{name: "缺少主机名", targetURL: "https://", wantErr: true},
		{name: "延迟为负数", urlFile: "urls.txt", batchDelay: -1, wantErr: true},
		{name: "延迟过长", urlFile: "urls.txt", batchDelay: 61, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlags(tt.targetURL, tt.urlFile, tt.batchDelay)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "https://example.com"},
		{"  example.com/path  ", "https://example.com/path"},
		{"http://example.com", "http://example.com"},
		{"https://example.com/a?b=c", "https://example.com/a?b=c"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if err != nil {
				t.Fatalf("NormalizeURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
