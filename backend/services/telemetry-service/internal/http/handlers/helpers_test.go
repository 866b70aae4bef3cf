package handlers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteJSONReportsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	rec := httptest.NewRecorder()

	writeJSON(rec, zap.New(core), http.StatusOK, map[string]float64{"servoX": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal error"}`, rec.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to encode response", logs.All()[0].Message)
}

func TestWriteJSONWritesPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, nil, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}
