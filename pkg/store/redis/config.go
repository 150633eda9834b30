package redis

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config 对应配置 store.redis.<name>
type Config struct {
	// tcp://password@127.0.0.1:6379/0
	Url          string        `mapstructure:"url" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout" validate:"gte=0"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout" validate:"gte=0"`
	MaxRetries   int           `mapstructure:"maxRetries" validate:"gte=-1"`
	PoolSize     int           `mapstructure:"poolSize" validate:"gte=0"`
}

// options 零值沿用 go-redis 的默认值
func (c Config) options() []Option {
	var opts []Option
	if c.ReadTimeout > 0 {
		opts = append(opts, WithReadTimeout(c.ReadTimeout))
	}
	if c.WriteTimeout > 0 {
		opts = append(opts, WithWriteTimeout(c.WriteTimeout))
	}
	if c.DialTimeout > 0 {
		opts = append(opts, WithDialTimeout(c.DialTimeout))
	}
	if c.MaxRetries != 0 {
		opts = append(opts, WithMaxRetries(c.MaxRetries))
	}
	if c.PoolSize > 0 {
		opts = append(opts, WithPoolSize(c.PoolSize))
	}
	return opts
}

// RegisterFromConfig 按名称顺序注册 任一配置不合法时不注册任何 client
func RegisterFromConfig(cfgs map[string]Config) error {
	names := make([]string, 0, len(cfgs))
	v := validator.New()
	for name, cfg := range cfgs {
		if err := v.Struct(cfg); err != nil {
			return fmt.Errorf("store.redis.%s: %w", name, err)
		}
		if _, err := parseDsn(cfg.Url); err != nil {
			return fmt.Errorf("store.redis.%s: %w", name, err)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		cfg := cfgs[name]
		if err := RegisterByName(name, cfg.Url, cfg.options()...); err != nil {
			return fmt.Errorf("store.redis.%s: %w", name, err)
		}
	}
	return nil
}
