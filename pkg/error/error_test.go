package error

import (
	"net/http"
	"testing"
)

func TestTypedErrorsImplementGenericError(t *testing.T) {
	cases := []struct {
		err    GenericError
		code   string
		status int
	}{
		{NotFoundError("report missing"), "NOT_FOUND_ERROR", http.StatusNotFound},
		{ValidationError("limit must be positive"), "VALIDATION_ERROR", http.StatusBadRequest},
		{InternalServerError("boom"), "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
		{DeviceError("serial port closed"), "DEVICE_ERROR", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if tc.err.ErrCode() != tc.code {
			t.Fatalf("%T: expected code %s, got %s", tc.err, tc.code, tc.err.ErrCode())
		}
		if tc.err.StatusCode() != tc.status {
			t.Fatalf("%T: expected status %d, got %d", tc.err, tc.status, tc.err.StatusCode())
		}
		if tc.err.Error() == "" {
			t.Fatalf("%T: empty message", tc.err)
		}
	}
}
