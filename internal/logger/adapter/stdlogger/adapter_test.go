package stdlogger_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zulip-archive/zulip-archive/internal/logger"
	"github.com/zulip-archive/zulip-archive/internal/logger/adapter/stdlogger"
)

func TestAdapter(t *testing.T) {
	testCases := []struct {
		name     string
		level    string
		contains []string
		missing  []string
	}{
		{
			name:     "info level hides debug",
			level:    "info",
			contains: []string{"slow query", "record not found", `"component":"gorm"`, `"level":"warn"`},
			missing:  []string{"sql trace"},
		},
		{
			name:     "debug level shows everything",
			level:    "debug",
			contains: []string{"sql trace", `"component":"db"`, "slow query"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := capture(t, logger.Log{
				Level:       tc.level,
				ServiceName: "test",
				Console:     logger.Console{Enabled: true},
			})

			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}

			for _, s := range tc.missing {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func capture(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	require.NoError(t, logger.Init(cfg))

	stdlogger.NewComponent("db", zerolog.DebugLevel).Printf("sql %s\n", "trace")

	gormLog := stdlogger.NewComponent("gorm", zerolog.WarnLevel)
	gormLog.Printf("slow query %dms", 250)
	gormLog.Printf("record %s", "not found")

	outC := make(chan string)
	// copy the output in a separate goroutine so printing can't block indefinitely
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()
	os.Stdout = stdout
	os.Stderr = stderr

	return <-outC
}
