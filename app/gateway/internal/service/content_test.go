package service

import (
	"errors"
	"testing"

	kerrors "github.com/go-kratos/kratos/v2/errors"

	"github.com/iWorld-y/overcomer/app/content/pkg/engine"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		reason string
	}{
		{"missing credential", &engine.Error{Kind: engine.KindConfigurationMissing, Op: "fetch_structured", Err: engine.ErrDisabled}, 503, "CONFIGURATION_MISSING"},
		{"bad category", &engine.Error{Kind: engine.KindInvalidCategory, Op: "fetch_structured"}, 400, "INVALID_CATEGORY"},
		{"network", &engine.Error{Kind: engine.KindTransportFailure, Op: "fetch_raw"}, 502, "TRANSPORT_FAILURE"},
		{"no payload", &engine.Error{Kind: engine.KindNoPayload, Op: "fetch_structured"}, 502, "NO_PAYLOAD"},
		{"invalid payload", &engine.Error{Kind: engine.KindInvalidPayload, Op: "fetch_structured"}, 502, "INVALID_PAYLOAD"},
		{"kratos error passes through", kerrors.NotFound("PAYLOAD_NOT_FOUND", "none"), 404, "PAYLOAD_NOT_FOUND"},
		{"unknown", errors.New("boom"), 500, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kerrors.FromError(toHTTPError(tt.err))
			if int(got.Code) != tt.code || got.Reason != tt.reason {
				t.Errorf("toHTTPError() = %d %s, want %d %s", got.Code, got.Reason, tt.code, tt.reason)
			}
		})
	}
}
