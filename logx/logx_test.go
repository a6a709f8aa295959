package logx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryAndLevelPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(lumberjackLogger)

	Warn("LEDGER", "balance ", 42)

	assert.Contains(t, buf.String(), "[WARN][LEDGER]")
	assert.Contains(t, buf.String(), "balance 42")
}

func TestErrorfReturnsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(lumberjackLogger)

	err := Errorf("store %s unavailable", "leveldb")

	assert.EqualError(t, err, "store leveldb unavailable")
	assert.Contains(t, buf.String(), "[ERROR][ERROR]")
}

func TestGetIntEnvFallsBack(t *testing.T) {
	t.Setenv(envLogFileMaxSizeMB, "not-a-number")
	assert.Equal(t, 7, getIntEnv(envLogFileMaxSizeMB, 7))

	t.Setenv(envLogFileMaxSizeMB, "12")
	assert.Equal(t, 12, getIntEnv(envLogFileMaxSizeMB, 7))
}
