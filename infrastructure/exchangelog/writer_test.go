package exchangelog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ylexus/google-issue-193814298/domain/exchange"
	"github.com/ylexus/google-issue-193814298/domain/probe"
)

func TestWriter_WritesDirectionAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	w := NewWriter(&buf, WithClock(func() time.Time { return ts }))

	w.Out(probe.NewQuotaRequest())
	w.In(&probe.StorageQuota{Limit: 100, Usage: 40})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, "2026-10-16T12:00:00Z OUT: about.get{fields=storageQuota/limit, storageQuota/usage}", lines[0])
	assert.Equal(t, "2026-10-16T12:00:00Z IN: About{storageQuota={limit=100, usage=40}}", lines[1])
}

func TestWriter_LinesParse(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Out("plain string request")
	w.In(probe.MarkerFile{ID: "1abc"})

	for _, raw := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		line, err := exchange.ParseLine(raw)
		require.NoError(t, err, raw)
		assert.True(t, line.Direction.Valid())
		assert.WithinDuration(t, time.Now(), line.Time, time.Minute)
	}
}
