package database

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config 对应配置 store.database.<name>
type Config struct {
	Url             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns" validate:"gte=0"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime" validate:"gte=0"`
	// 超过该时间的查询输出警告日志 0 不输出
	SlowThreshold time.Duration `mapstructure:"slowThreshold" validate:"gte=0"`
}

func (c Config) options() []Option {
	opts := []Option{WithSlowThreshold(c.SlowThreshold)}
	if c.MaxOpenConns > 0 {
		opts = append(opts, WithMaxOpenConns(c.MaxOpenConns))
	}
	if c.MaxIdleConns > 0 {
		opts = append(opts, WithMaxIdleConns(c.MaxIdleConns))
	}
	if c.ConnMaxIdleTime > 0 {
		opts = append(opts, WithConnMaxIdleTime(c.ConnMaxIdleTime))
	}
	return opts
}

// RegisterFromConfig 按名称顺序注册 任一配置不合法时不注册任何数据库
func RegisterFromConfig(cfgs map[string]Config) error {
	names := make([]string, 0, len(cfgs))
	v := validator.New()
	for name, cfg := range cfgs {
		if err := v.Struct(cfg); err != nil {
			return fmt.Errorf("store.database.%s: %w", name, err)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		cfg := cfgs[name]
		if err := RegisterByName(name, cfg.Url, cfg.options()...); err != nil {
			return fmt.Errorf("store.database.%s: %w", name, err)
		}
	}
	return nil
}
