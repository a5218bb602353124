package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	if !New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout).Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	if New(ErrCodeMethodNotFound, "missing", http.StatusOK).Retryable {
		t.Error("METHOD_NOT_FOUND should not be retryable")
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := InvalidParams("want 2 ints")
	if got := err.Error(); got != "INVALID_PARAMS: Invalid params: want 2 ints" {
		t.Errorf("got %q", got)
	}
	cause := fmt.Errorf("eof")
	err = ParseError(cause)
	if !strings.Contains(err.Error(), "(cause: eof)") {
		t.Errorf("got %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := Validation("bad").WithDetail("field", "port")
	if err.Details["field"] != "port" {
		t.Errorf("got %v", err.Details)
	}
}

func TestAppError_FaultCode_Table(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{ParseError(nil), FaultParse},
		{MethodNotFound("x"), FaultMethodNotFound},
		{InvalidParams("x"), FaultInvalidParams},
		{Validation("x"), FaultInvalidParams},
		{Internal(nil), FaultInternal},
		{Unauthorized(""), FaultApplication},
		{Timeout("sample.add"), FaultApplication},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if got := tt.err.FaultCode(); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppError_ToFault(t *testing.T) {
	f := MethodNotFound("math.div").ToFault()
	if f.Code != FaultMethodNotFound {
		t.Errorf("got code %d", f.Code)
	}
	if f.Message != `Method "math.div" is not registered.` {
		t.Errorf("got message %q", f.Message)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := InvalidParams("x")
	if Wrap(orig) != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}
	if got := Wrap(fmt.Errorf("outer: %w", orig)); got != orig {
		t.Errorf("expected wrapped AppError to be found, got %v", got)
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("got %+v", got)
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("plain error is not an AppError")
	}
	appErr, ok := AsAppError(fmt.Errorf("ctx: %w", Unauthorized("")))
	if !ok || appErr.Code != ErrCodeUnauthorized {
		t.Errorf("got %v, %v", appErr, ok)
	}
	if appErr.Message != "Authentication required." {
		t.Errorf("got %q", appErr.Message)
	}
}
