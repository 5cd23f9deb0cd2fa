package logcapture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adalharness/internal/report"
	"github.com/roach88/adalharness/internal/testutil"
)

func TestCountOccurrences(t *testing.T) {
	tests := []struct {
		name     string
		needle   string
		haystack string
		want     int
	}{
		{"once in three", "bar bar", "bar bar bar", 1},
		{"twice in four", "bar bar", "bar bar bar bar", 2},
		{"empty haystack", "x", "", 0},
		{"empty needle", "", "abc", 0},
		{"no match", "baz", "bar bar", 0},
		{"exact", "bar", "bar", 1},
		{"needle longer than haystack", "barbar", "bar", 0},
		{"separated matches", "ab", "ab--ab--ab", 3},
		// Overlap is not counted: the scan resumes after each full match.
		{"self-overlapping needle", "aa", "aaa", 1},
		{"self-overlapping needle twice", "aa", "aaaa", 2},
		{"overlapping prefix", "aba", "ababa", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountOccurrences(tt.needle, tt.haystack))
		})
	}
}

func TestSinkCount_AcrossRecords(t *testing.T) {
	s := NewSink()
	s.Append(PartMessage, "refresh token")
	s.Append(PartMessage, "refresh token")

	assert.Equal(t, 2, s.Count(PartMessage, "refresh"))
	assert.Equal(t, 0, s.Count(PartInfo, "refresh"))
}

func TestAssertContains_Complementary(t *testing.T) {
	s := NewSink()
	site := report.Here()

	for _, part := range Parts {
		rec := testutil.NewRecorder()

		// Before appending: NotContains succeeds, Contains fails.
		assert.True(t, AssertNotContains(rec, site, s, part, "needle"))
		assert.False(t, AssertContains(rec, site, s, part, "needle"))
		require.Len(t, rec.Failures(), 1)

		s.Append(part, "a needle in the haystack")
		rec.Reset()

		// After appending: Contains succeeds, NotContains fails.
		assert.True(t, AssertContains(rec, site, s, part, "needle"))
		assert.False(t, AssertNotContains(rec, site, s, part, "needle"))
		require.Len(t, rec.Failures(), 1)

		s.Clear()
	}
}

func TestAssertContains_FailureAttribution(t *testing.T) {
	s := NewSink()
	s.Append(PartMessage, "acquireToken")
	rec := testutil.NewRecorder()
	site := report.CallSite{File: "/src/login_test.go", Line: 88}

	AssertContains(rec, site, s, PartMessage, "refreshToken")

	require.Len(t, rec.Failures(), 1)
	msg := rec.Failures()[0]
	assert.Contains(t, msg, "login_test.go:88")
	assert.Contains(t, msg, string(report.KindAssertionMismatch))
	assert.Contains(t, msg, `message logs do not contain "refreshToken"`)
	assert.Contains(t, msg, "| acquireToken")
}

func TestAssertNotContains_EmptyLogsMessage(t *testing.T) {
	s := NewSink()
	rec := testutil.NewRecorder()

	assert.False(t, AssertContains(rec, report.Here(), s, PartCode, "5"))
	assert.Contains(t, rec.Failures()[0], "(no logs captured)")
}

func TestAssertCount(t *testing.T) {
	s := NewSink()
	s.Append(PartInfo, "bar bar bar bar")
	rec := testutil.NewRecorder()

	assert.True(t, AssertCount(rec, report.Here(), s, PartInfo, "bar bar", 2))
	assert.False(t, rec.Failed())

	assert.False(t, AssertCount(rec, report.Here(), s, PartInfo, "bar bar", 3))
	require.Len(t, rec.Failures(), 1)
	assert.Contains(t, rec.Failures()[0], "2 times, expected 3")
}
