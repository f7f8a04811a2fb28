package formatter

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRelativeDateFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", now, "Today"},
		{"tomorrow", now.Add(24 * time.Hour), "Tomorrow"},
		{"yesterday", now.Add(-24 * time.Hour), "Yesterday"},
		{"3 days future", now.Add(3 * 24 * time.Hour), "In 3d"},
		{"3 days past", now.Add(-3 * 24 * time.Hour), "3d ago"},
		{"3 weeks future", now.Add(21 * 24 * time.Hour), "In 3w"},
		{"3 months future", now.Add(90 * 24 * time.Hour), "In 3mo"},
		{"2 weeks past", now.Add(-14 * 24 * time.Hour), "2w ago"},
		{"3 months past", now.Add(-90 * 24 * time.Hour), "3mo ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDateFrom(tt.input, now))
		})
	}
}

func TestHumanTimestampFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Just now", HumanTimestampFrom(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", HumanTimestampFrom(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2h ago", HumanTimestampFrom(now.Add(-2*time.Hour), now))
	assert.Equal(t, "Feb 5, 2026", HumanTimestampFrom(now.Add(-48*time.Hour), now))
	assert.Equal(t, "Feb 8 09:30", HumanTimestampFrom(time.Date(2026, 2, 8, 9, 30, 0, 0, time.UTC), now))
}

func TestDueDateStyled(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	due := now.Add(3 * 24 * time.Hour)

	assert.Equal(t, "--", stripANSI(DueDateStyled(nil, false, now)))
	assert.Equal(t, "In 3d", stripANSI(DueDateStyled(&due, false, now)))
	assert.Equal(t, "In 3d", stripANSI(DueDateStyled(&due, true, now)))
}

func TestTruncID(t *testing.T) {
	assert.Equal(t, "1749981600000", stripANSI(TruncID("1749981600000")))
	assert.Equal(t, "0b4f2c1e", stripANSI(TruncID("0b4f2c1e-8d7a-4c4e-9a57-1f1e2d3c4b5a")))
}

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{
		-5:  "0m",
		0:   "0m",
		45:  "45m",
		60:  "1h",
		90:  "1h 30m",
		125: "2h 5m",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatMinutes(in), "minutes %d", in)
	}
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", FormatElapsed(-3))
	assert.Equal(t, "05:07", FormatElapsed(307))
	assert.Equal(t, "1:02:03", FormatElapsed(3723))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo w...", Truncate("héllo wörld again", 10))
}

func TestRenderFields_SkipsEmptyValues(t *testing.T) {
	got := stripANSI(RenderFields([][2]string{
		{"Title", "Read"},
		{"Description", ""},
		{"Due", "Today"},
	}))
	assert.Equal(t, "Title  Read\nDue    Today\n", got)
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	got := stripANSI(RenderTable([]string{"A", "BB"}, [][]string{{"xxx", "y"}, {"z"}}))
	assert.Equal(t, "A    BB\n───  ──\nxxx  y\nz    \n", got)
}
