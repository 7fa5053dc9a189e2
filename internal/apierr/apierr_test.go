package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/flueprint/flueprint/internal/apierr"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind apierr.Kind
		want int
	}{
		{apierr.BadRequest, http.StatusBadRequest},
		{apierr.ValidationError, http.StatusBadRequest},
		{apierr.ModelError, http.StatusInternalServerError},
		{apierr.DBError, http.StatusInternalServerError},
		{apierr.ServerError, http.StatusInternalServerError},
		{apierr.Kind("mystery"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.kind.HTTPStatus(); got != tc.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestKindOf_WalksWrapChain(t *testing.T) {
	t.Parallel()

	inner := apierr.New(apierr.ModelError, "all providers failed")
	wrapped := fmt.Errorf("handling request: %w", inner)

	if got := apierr.KindOf(wrapped); got != apierr.ModelError {
		t.Errorf("KindOf = %s, want model_error", got)
	}
}

func TestKindOf_UnclassifiedIsServerError(t *testing.T) {
	t.Parallel()

	if got := apierr.KindOf(errors.New("boom")); got != apierr.ServerError {
		t.Errorf("KindOf = %s, want server_error", got)
	}
}

func TestMessageOf_DoesNotLeakInternalDetail(t *testing.T) {
	t.Parallel()

	if got := apierr.MessageOf(errors.New("pq: connection refused")); got != "internal error" {
		t.Errorf("MessageOf leaked internal detail: %q", got)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: timeout")
	err := apierr.Wrap(apierr.DBError, cause, "saving session")

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if apierr.MessageOf(err) != "saving session" {
		t.Errorf("unexpected message: %q", apierr.MessageOf(err))
	}
}
