package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name"  validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
}

type selfValidating struct {
	Value int `json:"value"`
}

func (s selfValidating) Validate() error {
	if s.Value < 0 {
		return errors.New("value must not be negative")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
		empty   bool
	}{
		{name: "valid", body: `{"name":"ana"}`},
		{name: "empty body", body: ``, wantErr: true, empty: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "unknown field", body: `{"name":"ana","admin":true}`, wantErr: true},
		{name: "trailing data", body: `{"name":"ana"}{"name":"ben"}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var req sampleRequest
			err := DecodeJSON(r, &req)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "ana", req.Name)
				return
			}
			require.Error(t, err)
			if tt.empty {
				assert.ErrorIs(t, err, ErrEmptyBody)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRequest(sampleRequest{Name: "ana"}))

	err := ValidateRequest(sampleRequest{Name: "anastasia"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "name", verrs[0].Field())
	assert.Equal(t, "max", verrs[0].Tag())

	err = ValidateRequest(sampleRequest{Name: "ana", Email: "nope"})
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "email", verrs[0].Field())

	assert.NoError(t, ValidateRequest(selfValidating{Value: 1}))
	assert.EqualError(t, ValidateRequest(selfValidating{Value: -1}), "value must not be negative")
}
