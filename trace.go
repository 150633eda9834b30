package apidoc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	tr "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// TraceExporter 创建 span 导出器
type TraceExporter func(ctx context.Context) (trace.SpanExporter, error)

// TraceConfig 对应配置 app.traceExport
type TraceConfig struct {
	// http grpc stdout 为空时不导出
	Type     string `mapstructure:"type" validate:"omitempty,oneof=http grpc stdout empty"`
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Type http,required_if=Type grpc"`
	UseHTTPS bool   `mapstructure:"usehttps"`
	Pretty   bool   `mapstructure:"pretty"`
	// 采样比例 (0,1) 之外全部采样
	Ratio float64 `mapstructure:"ratio" validate:"gte=0,lte=1"`
}

// Exporter 按类型选择导出器
func (c TraceConfig) Exporter() (TraceExporter, error) {
	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("invalid traceExport: %w", err)
	}
	switch c.Type {
	case "http":
		return ExportHTTP(c.Endpoint, c.UseHTTPS), nil
	case "grpc":
		return ExportGRPC(c.Endpoint), nil
	case "stdout":
		return ExportStdout(c.Pretty), nil
	}
	return ExportEmpty(), nil
}

func (c TraceConfig) sampler() trace.Sampler {
	if c.Ratio > 0 && c.Ratio < 1 {
		return trace.ParentBased(trace.TraceIDRatioBased(c.Ratio))
	}
	return trace.AlwaysSample()
}

// ExportHTTP otlp http
func ExportHTTP(endpoint string, usehttps bool) TraceExporter {
	return func(ctx context.Context) (trace.SpanExporter, error) {
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithTimeout(10 * time.Second),
		}
		if !usehttps {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
}

// ExportGRPC otlp grpc 连接在首次导出时建立
func ExportGRPC(endpoint string) TraceExporter {
	return func(ctx context.Context) (trace.SpanExporter, error) {
		conn, err := grpc.NewClient(endpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, err
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	}
}

// ExportStdout 输出到控制台 调试用
func ExportStdout(pretty bool) TraceExporter {
	return func(ctx context.Context) (trace.SpanExporter, error) {
		if pretty {
			return stdouttrace.New(stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New()
	}
}

// ExportEmpty 生成 trace id 但丢弃所有 span
func ExportEmpty() TraceExporter {
	return func(ctx context.Context) (trace.SpanExporter, error) {
		return discardExporter{}, nil
	}
}

type discardExporter struct{}

func (discardExporter) Shutdown(context.Context) error { return nil }

func (discardExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }

func newTraceProvider(info AppInfo, cfg TraceConfig) (*trace.TracerProvider, error) {
	export, err := cfg.Exporter()
	if err != nil {
		return nil, err
	}
	if export == nil {
		return nil, errors.New("trace exporter is nil")
	}
	ctx := context.Background()
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(info.Name),
			semconv.ServiceVersionKey.String(info.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace resource: %w", err)
	}
	exp, err := export(ctx)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	return trace.NewTracerProvider(
		trace.WithSampler(cfg.sampler()),
		trace.WithResource(res),
		trace.WithSpanProcessor(trace.NewBatchSpanProcessor(exp)),
	), nil
}

// TracerStart 使用全局 provider 开启 span
func TracerStart(ctx context.Context, name string) (context.Context, tr.Span) {
	return otel.GetTracerProvider().Tracer("github.com/parkingwang/apidoc").Start(ctx, name)
}
