package logcapture

import (
	"strings"

	"github.com/roach88/adalharness/internal/report"
)

// CountOccurrences counts non-overlapping matches of needle in haystack,
// scanning left to right and resuming after each full match.
//
// "bar bar" occurs once in "bar bar bar" and twice in "bar bar bar bar";
// "aa" occurs once in "aaa". An empty needle or haystack counts 0.
func CountOccurrences(needle, haystack string) int {
	if needle == "" || haystack == "" {
		return 0
	}

	count := 0
	for i := 0; i+len(needle) <= len(haystack); {
		if strings.HasPrefix(haystack[i:], needle) {
			count++
			i += len(needle)
			continue
		}
		i++
	}
	return count
}

// AssertContains fails with KindAssertionMismatch unless Logs(part)
// contains text.
func AssertContains(t report.TB, site report.CallSite, s *Sink, part Part, text string) bool {
	t.Helper()

	logs := s.Logs(part)
	if strings.Contains(logs, text) {
		return true
	}
	report.Reportf(t, report.KindAssertionMismatch, site,
		"%s logs do not contain %q\n%s", part, text, quoteLogs(logs))
	return false
}

// AssertNotContains fails with KindAssertionMismatch if Logs(part)
// contains text.
func AssertNotContains(t report.TB, site report.CallSite, s *Sink, part Part, text string) bool {
	t.Helper()

	logs := s.Logs(part)
	if !strings.Contains(logs, text) {
		return true
	}
	report.Reportf(t, report.KindAssertionMismatch, site,
		"%s logs unexpectedly contain %q\n%s", part, text, quoteLogs(logs))
	return false
}

// AssertCount fails with KindAssertionMismatch unless needle occurs
// exactly want times in Logs(part).
func AssertCount(t report.TB, site report.CallSite, s *Sink, part Part, needle string, want int) bool {
	t.Helper()

	logs := s.Logs(part)
	got := CountOccurrences(needle, logs)
	if got == want {
		return true
	}
	report.Reportf(t, report.KindAssertionMismatch, site,
		"%s logs contain %q %d times, expected %d\n%s", part, needle, got, want, quoteLogs(logs))
	return false
}

func quoteLogs(logs string) string {
	if logs == "" {
		return "  (no logs captured)"
	}
	lines := strings.Split(logs, Separator)
	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString("  | ")
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
