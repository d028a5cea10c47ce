package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestConstructorsSetCodeAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad booking", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("already exists"), CodeConflict, http.StatusConflict},
		{"capacity exceeded", CapacityExceeded("room full", nil), CodeCapacityExceeded, http.StatusConflict},
		{"internal", Internal("boom", errors.New("db down")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.StatusCode() != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.StatusCode())
			}
		})
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("query failed", cause)

	if got := err.Error(); got != "INTERNAL_ERROR: query failed (caused by: connection refused)" {
		t.Errorf("unexpected error string %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestIsCode(t *testing.T) {
	err := CapacityExceeded("room full", nil)
	if !IsCode(err, CodeCapacityExceeded) {
		t.Error("expected IsCode to match")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("expected IsCode to reject a different code")
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Error("expected IsCode to reject non-app errors")
	}
}

func TestAsAppErrorWrapsUnknownErrors(t *testing.T) {
	plain := errors.New("plain failure")
	wrapped := AsAppError(plain)

	if wrapped.Code != CodeInternal {
		t.Errorf("expected internal code, got %s", wrapped.Code)
	}
	if !errors.Is(wrapped, plain) {
		t.Error("expected original error preserved")
	}

	app := NotFound("Booking")
	if AsAppError(app) != app {
		t.Error("expected existing app error returned unchanged")
	}
}
