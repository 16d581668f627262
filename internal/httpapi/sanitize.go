package httpapi

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/narrativegraph/pathfinder/internal/searcherr"
)

// credentialPattern, addressPattern and stackFramePattern consolidate the
// teacher's kernel.SanitizeError pattern list into three alternations
// instead of a slice walked pattern-by-pattern. They are only ever applied
// to text the engine doesn't control: an AdapterError's wrapped transport
// Cause, or an error outside the searcherr taxonomy entirely. A
// ConfigError's Key, a FilterError's BadDate and an AdapterError's own
// Kind/Node are typed fields the engine produced itself — an IRI or a
// config key, never a credential or a stack frame — so they're rendered
// straight from Error() with no redaction pass at all.
var (
	credentialPattern = regexp.MustCompile(`(?i)(?:password|token|secret|api[_-]?key)\s*[:=]\s*\S+|(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`)
	addressPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}|\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b|[/\\][a-zA-Z0-9_\-./\\]+`)
	stackFramePattern = regexp.MustCompile(`goroutine \d+|created by .*\.go:\d+|\.go:\d+|\b0x[0-9a-fA-F]+\b`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// SanitizeError renders err for an HTTP response or access log. It
// switches on the searcherr taxonomy first: a ConfigError, FilterError or
// RankerEmpty never carries anything to redact and is returned verbatim;
// an AdapterError has its Node/Kind rendered verbatim but its wrapped
// Cause run through redact, since that cause came from gRPC or net/http
// and is outside the engine's control. Anything not in the taxonomy — a
// raw dial error, for instance — goes through redact wholesale.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	var cfgErr *searcherr.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Error()
	}
	var filterErr *searcherr.FilterError
	if errors.As(err, &filterErr) {
		return filterErr.Error()
	}
	var adapterErr *searcherr.AdapterError
	if errors.As(err, &adapterErr) {
		return sanitizeAdapterError(adapterErr)
	}
	if errors.Is(err, searcherr.RankerEmpty) {
		return err.Error()
	}

	return redact(err.Error())
}

// sanitizeAdapterError reconstructs AdapterError.Error()'s message, but
// with a redacted Cause in the AdapterIO case — the only one that wraps an
// external error at all.
func sanitizeAdapterError(e *searcherr.AdapterError) string {
	if e.Kind != searcherr.AdapterIO || e.Cause == nil {
		return e.Error()
	}
	return fmt.Sprintf("adapter: io error for %q: %s", e.Node, redact(e.Cause.Error()))
}

// SanitizeString applies the generic redaction pass to an arbitrary
// string — used for log lines that never went through a typed error.
func SanitizeString(input string) string {
	return redact(input)
}

func redact(input string) string {
	result := credentialPattern.ReplaceAllString(input, "[REDACTED]")
	result = addressPattern.ReplaceAllString(result, "[REDACTED]")
	result = stackFramePattern.ReplaceAllString(result, "")
	result = strings.TrimSpace(result)
	return whitespaceRun.ReplaceAllString(result, " ")
}
