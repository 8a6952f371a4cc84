package validation

import (
	"testing"

	"parcel-ledger/internal/core/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Type     string `json:"note_type" validate:"omitempty,oneof=GENERAL DELIVERY ISSUE"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
		wantMsg   string
	}{
		{"Valid", sampleRequest{Email: "a@b.bg", Password: "longenough"}, "", ""},
		{"MissingEmail", sampleRequest{Password: "longenough"}, "email", "email is required"},
		{"BadEmail", sampleRequest{Email: "nope", Password: "longenough"}, "email", "valid email"},
		{"ShortPassword", sampleRequest{Email: "a@b.bg", Password: "short"}, "password", "at least 8"},
		{"BadEnum", sampleRequest{Email: "a@b.bg", Password: "longenough", Type: "X"}, "note_type", "one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Equal(t, tt.wantField, e.Field)
			assert.Contains(t, e.Message, tt.wantMsg)
		})
	}
}
