package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loomworks/loom/logger"
)

func TestBufferRecordsEveryLevel(t *testing.T) {
	t.Parallel()

	b := logger.NewBuffer()
	var l logger.Logger = b
	l.SetLevel(logger.ERROR)
	l.Debug("checking %d files", 2)
	l.WithFields(logger.StringField("file", "ci.yml")).Warn("slow")
	l.Fatal("giving up")

	assert.Equal(t, []string{
		"[debug] checking 2 files",
		"[warn] slow",
		"[fatal] giving up",
	}, b.Messages)
}
