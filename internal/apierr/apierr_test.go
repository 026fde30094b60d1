package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusAndCodeMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "unauthenticated", err: Unauthenticated(errors.New("no token")), wantStatus: http.StatusUnauthorized, wantCode: CodeUnauthenticated},
		{name: "not_found", err: NotFound(errors.New("gone")), wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "persistence", err: Persistence(errors.New("db down")), wantStatus: http.StatusInternalServerError, wantCode: CodePersistenceFailure},
		{name: "network", err: Network(errors.New("timeout")), wantStatus: http.StatusBadGateway, wantCode: CodeNetworkFailure},
		{name: "plain_error_defaults", err: errors.New("unknown"), wantStatus: http.StatusInternalServerError, wantCode: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusOf(tc.err); got != tc.wantStatus {
				t.Fatalf("StatusOf = %d, want %d", got, tc.wantStatus)
			}
			if got := CodeOf(tc.err); got != tc.wantCode {
				t.Fatalf("CodeOf = %q, want %q", got, tc.wantCode)
			}
		})
	}
}

func TestMappingSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("adding item: %w", NotFound(errors.New("variant missing")))
	if StatusOf(err) != http.StatusNotFound {
		t.Fatalf("wrapped status lost: %d", StatusOf(err))
	}
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("wrapped code lost: %q", CodeOf(err))
	}
}

func TestErrorString(t *testing.T) {
	if got := NotFound(errors.New("cart item not found")).Error(); got != "cart item not found" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := (&Error{Code: CodeNetworkFailure}).Error(); got != CodeNetworkFailure {
		t.Fatalf("expected the code as fallback message, got %q", got)
	}
}
