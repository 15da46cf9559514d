package validators

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/safetyshop-backend/pkg/errors"
)

type previewBody struct {
	Order map[string]any `json:"order" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"order":{"tax":18.5,"products":[]}}`))

	var body previewBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, json.Number("18.5"), body.Order["tax"])
}

func TestDecodeJSONBodyRequiredField(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))

	var body previewBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{"order": "is required"}, typed.Details())
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"order":{},"extra":true}`))

	var body previewBody
	err := DecodeJSONBody(req, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"order":`))

	var body previewBody
	err := DecodeJSONBody(req, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
