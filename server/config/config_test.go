package config

import (
	"testing"
	"time"
)

func TestVersionTimeout(t *testing.T) {
	for _, tt := range []struct {
		raw  string
		want time.Duration
	}{
		{"10s", time.Second * 10},
		{"1m30s", time.Second * 90},
		{"1d", time.Hour * 24},
		{"", time.Second * 10},       // unset falls back
		{"potato", time.Second * 10}, // garbage falls back
		{"-5s", time.Second * 10},    // non-positive falls back
	} {
		c := Config{Updates: UpdatesConfig{VersionTimeout: tt.raw}}
		if got := c.VersionTimeout(); got != tt.want {
			t.Errorf("VersionTimeout(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
