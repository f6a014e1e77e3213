package common_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillspark/hub-api/internal/common"
)

func TestWriteErrorUsesAppErrorMetadata(t *testing.T) {
	rr := httptest.NewRecorder()
	err := common.NewAppError("GATEWAY_UNAVAILABLE", "gateway down", http.StatusInternalServerError, errors.New("dial tcp")).
		WithDetails(map[string]any{"code": "SERVER_ERROR"})
	common.WriteError(rr, err, http.StatusBadRequest)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body struct {
		Error common.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "GATEWAY_UNAVAILABLE", body.Error.Code)
	require.Equal(t, "gateway down", body.Error.Message)
	require.NotNil(t, body.Error.Details)
}

func TestWriteErrorFallsBackForPlainErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	common.WriteError(rr, errors.New("boom"), http.StatusInternalServerError)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "boom")
}

func TestStatusOf(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", common.BadRequest("INVALID_AMOUNT", "amount must be positive"))
	require.Equal(t, http.StatusBadRequest, common.StatusOf(wrapped, http.StatusInternalServerError))
	require.Equal(t, http.StatusBadGateway, common.StatusOf(errors.New("plain"), http.StatusBadGateway))
	require.Equal(t, http.StatusTeapot, common.StatusOf(common.NewAppError("X", "x", 0, nil), http.StatusTeapot))
}
