package utils

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"
)

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims and collapses", "  cute \t cats \n", "cute cats"},
		{"full width ascii", "ｃａｔｓ　１２", "cats 12"},
		{"empty", "   ", ""},
		{"decomposed hangul", norm.NFD.String("고양이"), "고양이"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKeyword(tt.in))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "", FormatTimestamp(nil))

	ts := time.Date(2017, 6, 21, 15, 59, 30, 0, time.Local)
	assert.Equal(t, "2017-06-21 15:59:30", FormatTimestamp(&ts))
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("debug", "json")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = NewLogger("nonsense", "")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
