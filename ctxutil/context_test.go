package ctxutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestEnsureTraceID_Generates(t *testing.T) {
	ctx, traceID := EnsureTraceID(context.Background())

	if _, err := uuid.Parse(traceID); err != nil {
		t.Errorf("EnsureTraceID() = %q, not a uuid: %v", traceID, err)
	}
	if got := GetTraceID(ctx); got != traceID {
		t.Errorf("GetTraceID() = %v, want %v", got, traceID)
	}
}

func TestEnsureTraceID_KeepsExisting(t *testing.T) {
	ctx := SetTraceID(context.Background(), "existing")

	_, traceID := EnsureTraceID(ctx)
	if traceID != "existing" {
		t.Errorf("EnsureTraceID() = %v, want existing", traceID)
	}
}

func TestSetValue_WritesThroughGinContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	ctx := WithGinContext(context.Background(), c)
	SetTraceID(ctx, "from-gin")

	if v, ok := c.Get(TraceIDKey); !ok || v != "from-gin" {
		t.Errorf("gin context value = %v, %v; want from-gin, true", v, ok)
	}
	if got := GetTraceID(ctx); got != "from-gin" {
		t.Errorf("GetTraceID() = %v, want from-gin", got)
	}
}
