package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

var (
	mu  sync.RWMutex
	dbs = make(map[string]*gorm.DB)
)

const defaultName = "default"

// Register 注册默认数据库
// 当只有一个数据库的时候推荐使用
func Register(dsn string, opts ...Option) error {
	return RegisterByName(defaultName, dsn, opts...)
}

// RegisterByName 按名称注册数据库
// 适合同时需要操作多个数据库
// dsn 以 postgres:// 或 postgresql:// 开头时使用 postgres 否则使用 mysql
func RegisterByName(name, dsn string, opts ...Option) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := dbs[name]; ok {
		return fmt.Errorf("db %s already registered", name)
	}
	db, err := gorm.Open(
		dialector(dsn),
		&gorm.Config{Logger: &queryLogger{}},
	)
	if err != nil {
		return err
	}
	// 启动opentelemetry
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	for _, apply := range opts {
		if err := apply(db); err != nil {
			return err
		}
	}
	dbs[name] = db
	return nil
}

func dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return mysql.Open(strings.TrimPrefix(dsn, "mysql://"))
}

// Close 关闭所有已注册的数据库
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	for name, db := range dbs {
		d, err := db.DB()
		if err != nil {
			return err
		}
		if err := d.Close(); err != nil {
			return err
		}
		delete(dbs, name)
	}
	return nil
}

// Has 是否已注册
func Has(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := dbs[name]
	return ok
}

// Get 获取数据库
func Get(ctx context.Context, name ...string) *gorm.DB {
	var n string
	if len(name) == 0 || name[0] == "" {
		n = defaultName
	} else {
		n = name[0]
	}
	mu.RLock()
	db, ok := dbs[n]
	mu.RUnlock()
	if ok {
		return db.WithContext(ctx)
	}
	panic(fmt.Sprintf("db %s not registered", n))
}

// Option 数据库的一些配置
type Option func(*gorm.DB) error

func WithMaxOpenConns(n int) Option {
	return func(db *gorm.DB) error {
		d, err := db.DB()
		if err != nil {
			return err
		}
		d.SetMaxOpenConns(n)
		return nil
	}
}

func WithMaxIdleConns(n int) Option {
	return func(db *gorm.DB) error {
		d, err := db.DB()
		if err != nil {
			return err
		}
		d.SetMaxIdleConns(n)
		return nil
	}
}

func WithConnMaxIdleTime(n time.Duration) Option {
	return func(db *gorm.DB) error {
		d, err := db.DB()
		if err != nil {
			return err
		}
		d.SetConnMaxIdleTime(n)
		return nil
	}
}

func WithAutoMigrate(dst ...any) Option {
	return func(d *gorm.DB) error {
		return d.AutoMigrate(dst...)
	}
}
