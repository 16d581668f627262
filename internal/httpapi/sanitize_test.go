package httpapi

import (
	"errors"
	"strings"
	"testing"

	"github.com/narrativegraph/pathfinder/internal/searcherr"
)

func TestSanitizeErrorRedactsSecrets(t *testing.T) {
	err := errors.New("dial failed: password=hunter2 token: abc123 at /root/module/internal/store/hdt_adapter.go:42")
	got := SanitizeError(err)

	for _, leak := range []string{"hunter2", "abc123", "hdt_adapter.go"} {
		if strings.Contains(got, leak) {
			t.Errorf("sanitized message %q still contains %q", got, leak)
		}
	}
}

func TestSanitizeErrorNil(t *testing.T) {
	if got := SanitizeError(nil); got != "" {
		t.Errorf("expected empty string for nil error, got %q", got)
	}
}

func TestSanitizeErrorConfigErrorPassesThroughVerbatim(t *testing.T) {
	err := &searcherr.ConfigError{Key: "iterations", Reason: "must be a non-negative integer"}
	if got := SanitizeError(err); got != err.Error() {
		t.Errorf("SanitizeError() = %q, want the ConfigError's own message unchanged", got)
	}
}

func TestSanitizeErrorAdapterIORedactsOnlyTheWrappedCause(t *testing.T) {
	cause := errors.New("rpc error: dial tcp 10.0.0.5:9080: connect: password=hunter2")
	err := searcherr.IO("http://example.org/node", cause)

	got := SanitizeError(err)
	if strings.Contains(got, "hunter2") {
		t.Errorf("sanitized message %q still contains the credential", got)
	}
	if strings.Contains(got, "10.0.0.5") {
		t.Errorf("sanitized message %q still contains the IP address", got)
	}
	if !strings.Contains(got, "http://example.org/node") {
		t.Errorf("sanitized message %q dropped the node IRI, which is not secret", got)
	}
}

func TestSanitizeErrorAdapterNotFoundPassesThroughVerbatim(t *testing.T) {
	err := searcherr.NotFound("http://example.org/missing")
	if got := SanitizeError(err); got != err.Error() {
		t.Errorf("SanitizeError() = %q, want the AdapterError's own message unchanged", got)
	}
}
