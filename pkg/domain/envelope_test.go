package domain

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_MarshalJSON_Success(t *testing.T) {
	resp := Succeed(Payload{
		"drawingId":  "drawing_1_abc",
		"dimensions": map[string]any{"width": 800, "height": 600},
		"success":    "ignored",
	}, "Drawing created successfully")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": true,
		"drawingId": "drawing_1_abc",
		"dimensions": {"width": 800, "height": 600},
		"message": "Drawing created successfully"
	}`, string(data))
}

func TestResponse_MarshalJSON_FailureDropsPayload(t *testing.T) {
	resp := Response{Success: false, Message: "Unknown tool: nope", Payload: Payload{"leak": true}, Kind: KindUnknownTool}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Unknown tool: nope"}`, string(data))
}

func TestResponse_UnmarshalJSON(t *testing.T) {
	var ok Response
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"drawingId":"x","message":"done"}`), &ok))
	assert.True(t, ok.Success)
	assert.Equal(t, "done", ok.Message)
	assert.Equal(t, Payload{"drawingId": "x"}, ok.Payload)

	var failed Response
	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"error":"boom"}`), &failed))
	assert.False(t, failed.Success)
	assert.Equal(t, "boom", failed.Message)
	assert.Nil(t, failed.Payload)

	var bad Response
	assert.Error(t, json.Unmarshal([]byte(`{"message":"no flag"}`), &bad))
}

func TestResponse_StatusCode(t *testing.T) {
	tests := []struct {
		resp Response
		want int
	}{
		{Succeed(nil, "ok"), http.StatusOK},
		{Fail(KindBadRequest, "Tool name is required"), http.StatusBadRequest},
		{Fail(KindUnknownTool, "Unknown tool: %s", "x"), http.StatusBadRequest},
		{Fail(KindInvalidArguments, "missing"), http.StatusBadRequest},
		{Fail(KindHandlerFailure, "Error executing tool x: boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.resp.StatusCode(), "kind %q", tt.resp.Kind)
	}
}
