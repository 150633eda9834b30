package apidoc

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/parkingwang/apidoc/pkg/http/client"
	"github.com/parkingwang/apidoc/pkg/http/web"
	"github.com/parkingwang/apidoc/pkg/http/web/oas"
	"github.com/parkingwang/apidoc/pkg/store/database"
	"github.com/parkingwang/apidoc/pkg/store/redis"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"golang.org/x/exp/slog"
)

type Application struct {
	fxProvides    []any
	fxInvokeFuncs []any
	info          AppInfo
}

func New(info AppInfo) *Application {
	cfg := Conf().Child("app")
	slog.SetDefault(slog.New(NewTraceSlogHandler(
		os.Stderr,
		cfg.GetBool("log.addSource"),
		func() slog.Leveler {
			if cfg.GetBool("log.debug") {
				return slog.LevelDebug
			}
			return slog.LevelInfo
		}(),
	)))

	if info.Version == "" {
		info.Version = getVCSVersion()
	}

	var traceCfg TraceConfig
	if cfg.IsSet("traceExport") {
		if err := cfg.Decode("traceExport", &traceCfg); err != nil {
			slog.Error("decode app.traceExport failed", "err", err)
			os.Exit(1)
		}
	}
	slog.Info("init app",
		slog.String("name", info.Name),
		slog.String("version", info.Version),
		slog.String("traceExportType", traceCfg.Type),
	)

	// enable trace
	tp, err := newTraceProvider(info, traceCfg)
	if err != nil {
		slog.Error("init tracer provider failed", "err", err)
		os.Exit(1)
	}
	otel.SetTextMapPropagator(b3.New())
	otel.SetTracerProvider(tp)

	// 自动加载pkg/store
	if err := initPkgStore(); err != nil {
		slog.Error("init pkg/store failed", "err", err)
		os.Exit(1)
	}

	return &Application{info: info}
}

// Info 应用信息
func (app *Application) Info() AppInfo {
	return app.info
}

// Provide 依赖注入构造器
func (app *Application) Provide(provide ...any) {
	app.fxProvides = append(app.fxProvides, provide...)
}

// Invoke 注册调用
func (app *Application) Invoke(funcs ...any) {
	app.fxInvokeFuncs = append(app.fxInvokeFuncs, funcs...)
}

func fxLifecycle(srvs []Servicer, lc fx.Lifecycle) {
	for _, v := range srvs {
		lc.Append(fx.Hook{
			OnStart: v.Start,
			OnStop:  v.Stop,
		})
	}
}

func (app *Application) Run(srv ...any) {
	for _, v := range srv {
		app.fxProvides = append(app.fxProvides, asServicer(v))
	}
	fxapp := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxInjectLogger{
				baselog: slog.With(slog.String("type", "apidoc")),
			}
		}),
		fx.Provide(app.fxProvides...),
		fx.Invoke(app.fxInvokeFuncs...),
		fx.Invoke(
			fx.Annotate(
				fxLifecycle,
				fx.ParamTags(`group:"services"`),
			),
		),
	)
	fxapp.Run()
}

func asServicer(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(Servicer)),
		fx.ResultTags(`group:"services"`),
	)
}

type fxInjectLogger struct {
	baselog *slog.Logger
}

func (m *fxInjectLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.Provided:
		if e.Err != nil {
			m.baselog.Error("provided error encountered while applying options", "err", e.Err)
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			m.baselog.Error("invoked failed", "err", e.Err, slog.String("function", e.FunctionName))
		}
	case *fxevent.Stopping:
		m.baselog.Info("received signal", slog.String("signal", strings.ToUpper(e.Signal.String())))
	case *fxevent.Stopped:
		if e.Err != nil {
			m.baselog.Error("stop failed", "err", e.Err)
		}
	case *fxevent.Started:
		if e.Err != nil {
			m.baselog.Error("start failed", "err", e.Err)
		} else {
			m.baselog.Info("started")
		}
	}
}

// Servicer 服务接口
type Servicer interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// WebConfig server.web 配置
type WebConfig struct {
	Addr        string
	DumpRequest bool
	Pprof       bool
	OpenAPI     OpenAPIConfig `mapstructure:"openapi"`
}

type OpenAPIConfig struct {
	Enable  bool
	DocPath string
	// 文档覆盖文件 yaml 或 json 非零字段覆盖默认值 支持 http(s) 地址
	Spec string
	// 实体定义文件 名称 -> 定义
	Definitions string
	// 读取 rpc 方法的源码注释
	HandlerComments bool
}

// CreateWebServer 根据 server.web 配置创建 web 服务
func (app *Application) CreateWebServer() (*web.Server, error) {
	var cfg WebConfig
	if err := Conf().Decode("server.web", &cfg); err != nil {
		return nil, fmt.Errorf("decode server.web: %w", err)
	}
	return NewWebServer(app.info, cfg)
}

// NewWebServer 根据配置创建 web 服务 并加载文档覆盖和实体定义文件
func NewWebServer(info AppInfo, cfg WebConfig) (*web.Server, error) {
	opts := []web.Option{
		web.WithDumpRequestBody(cfg.DumpRequest),
		web.WithPprof(cfg.Pprof),
	}
	if cfg.Addr != "" {
		opts = append(opts, web.WithAddr(cfg.Addr))
	}
	if cfg.OpenAPI.Enable {
		var override *oas.Document
		if cfg.OpenAPI.Spec != "" {
			data, err := readSource(cfg.OpenAPI.Spec)
			if err != nil {
				return nil, err
			}
			if override, err = oas.LoadDocument(data); err != nil {
				return nil, err
			}
		}
		opts = append(opts,
			web.WithOpenAPI(info.Project(), override),
			web.WithDocPath(cfg.OpenAPI.DocPath),
			web.WithHandlerComments(cfg.OpenAPI.HandlerComments),
		)
	}
	srv := web.New(opts...)
	if cfg.OpenAPI.Definitions != "" {
		data, err := readSource(cfg.OpenAPI.Definitions)
		if err != nil {
			return nil, err
		}
		if err := srv.Spec().LoadDefinitions(data); err != nil {
			return nil, err
		}
	}
	return srv, nil
}

var docClient = client.NewClient(client.Option{
	BreakerSetting: &gobreaker.Settings{Name: "openapi"},
})

// readSource 读取本地文件或 http(s) 地址
func readSource(path string) ([]byte, error) {
	if client.IsRemote(path) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ctx, span := TracerStart(ctx, "apidoc.readSource")
		defer span.End()
		return docClient.Get(ctx, path)
	}
	return os.ReadFile(path)
}

func initPkgStore() error {
	storecfg := Conf().Child("store")
	if storecfg.IsSet("database") {
		cfg := make(map[string]database.Config)
		if err := storecfg.Decode("database", &cfg); err != nil {
			return err
		}
		if err := database.RegisterFromConfig(cfg); err != nil {
			return err
		}
	}
	if storecfg.IsSet("redis") {
		cfg := make(map[string]redis.Config)
		if err := storecfg.Decode("redis", &cfg); err != nil {
			return err
		}
		if err := redis.RegisterFromConfig(cfg); err != nil {
			return err
		}
	}
	return nil
}
