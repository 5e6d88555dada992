package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		want int
	}{
		{
			name: "missing config file",
			args: func(t *testing.T) []string {
				return []string{"-config-file", filepath.Join(t.TempDir(), "config.yaml")}
			},
			want: exitConfigMissing,
		},
		{
			name: "invalid config",
			args: func(t *testing.T) []string {
				return []string{"-config-file", writeConfig(t, "pin_codes: []\n")}
			},
			want: exitFailure,
		},
		{
			name: "bad flag",
			args: func(t *testing.T) []string { return []string{"-no-such-flag"} },
			want: exitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(tt.args(t)))
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "debug", want: zapcore.DebugLevel},
		{in: "INFO", want: zapcore.InfoLevel},
		{in: "WARNING", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "Info", want: zapcore.InfoLevel},
		{in: " warn ", want: zapcore.WarnLevel},
		{in: "CRITICAL", want: zapcore.FatalLevel},
		{in: "fatal", want: zapcore.FatalLevel},
		{in: "verbose", want: zapcore.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantErr, err != nil, tt.in)
	}
}
