package tracing

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"score-engine/config"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.TracingConfig{Enabled: false}, zap.NewNop())
	if err != nil {
		t.Fatalf("비활성화 상태에서 에러가 없어야 함: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown 은 에러가 없어야 함: %v", err)
	}
}

func TestInit_StdoutExporter(t *testing.T) {
	cfg := &config.TracingConfig{Enabled: true, ServiceName: "score-engine-test", SampleRatio: 1}
	shutdown, err := Init(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("stdout exporter 초기화 실패: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown 실패: %v", err)
	}
}
