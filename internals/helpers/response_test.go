package helper

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolportal_backend/internals/helpers/apperr"
)

func serve(t *testing.T, h fiber.Handler) (int, map[string]any) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestFromErrorMapping(t *testing.T) {
	log := zap.NewNop()
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperr.Validation("parentId is required"), 400, "parentId is required"},
		{"not found", errors.Wrap(gorm.ErrRecordNotFound, "invoice"), 404, "record not found"},
		{"conflict", apperr.Conflict("invoice number already exists"), 409, "invoice number already exists"},
		{"internal hides cause", errors.New("pq: connection refused"), 500, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := serve(t, func(c *fiber.Ctx) error { return FromError(c, log, tt.err) })
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestFromErrorUpstreamCarriesPayload(t *testing.T) {
	payload := map[string]any{"status_code": "401", "error_messages": []any{"unauthorized"}}
	status, body := serve(t, func(c *fiber.Ctx) error {
		return FromError(c, zap.NewNop(), apperr.Upstream("gateway rejected the request", payload, nil))
	})
	assert.Equal(t, 502, status)
	assert.Equal(t, "UPSTREAM_ERROR", body["errorCode"])
	assert.Equal(t, "401", body["error"].(map[string]any)["status_code"])
}

func TestJsonCreatedCarriesID(t *testing.T) {
	status, body := serve(t, func(c *fiber.Ctx) error { return JsonCreated(c, "invoice created", 42, nil) })
	assert.Equal(t, 201, status)
	assert.Equal(t, float64(42), body["id"])
	assert.Equal(t, "invoice created", body["message"])
	_, hasData := body["data"]
	assert.False(t, hasData)
}

func TestValidatorUsesJSONNames(t *testing.T) {
	type req struct {
		ParentID *int64 `json:"parentId" validate:"required"`
		Method   string `json:"method" validate:"required"`
	}
	err := NewValidator().Struct(req{})
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "parentId")
	assert.Contains(t, ae.Fields, "method")
	assert.Equal(t, "parentId is a required field", ae.Fields["parentId"])
}

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(45, Paging{Page: 2, PerPage: 20}, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := BuildPagination(0, Paging{Page: 1, PerPage: 20}, 0)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
