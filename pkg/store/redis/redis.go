package redis

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
)

var (
	mu sync.RWMutex
	rs = make(map[string]*redis.Client)
)

const defaultName = "default"

// Register 使用默认名称 default 进行注册
func Register(dsn string, opts ...Option) error {
	return RegisterByName(defaultName, dsn, opts...)
}

// RegisterByName 注册redis
// dsn tcp://password@127.0.0.1:6379/0
func RegisterByName(name, dsn string, opts ...Option) error {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := rs[name]; ok {
		return fmt.Errorf("redis %s already registered", name)
	}
	opt, err := parseDsn(dsn)
	if err != nil {
		return fmt.Errorf("redis: parse dsn %w", err)
	}
	for _, o := range opts {
		if err := o(opt); err != nil {
			return err
		}
	}
	c := redis.NewClient(opt)
	c.AddHook(redisotel.NewTracingHook())
	rs[name] = c
	return nil
}

// Has 是否已注册
func Has(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := rs[name]
	return ok
}

// Get 获取已注册的redis client实例
// 如果未注册则会panic
func Get(name ...string) *redis.Client {
	var n string
	if len(name) == 0 || name[0] == "" {
		n = defaultName
	} else {
		n = name[0]
	}
	mu.RLock()
	c, ok := rs[n]
	mu.RUnlock()
	if ok {
		return c
	}
	panic(fmt.Sprintf("redis %s not registered", n))
}

// Close 关闭所有已注册的 client
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	for name, c := range rs {
		if err := c.Close(); err != nil {
			return err
		}
		delete(rs, name)
	}
	return nil
}

// Option redis选项
type Option func(*redis.Options) error

func WithMaxRetries(n int) Option {
	return func(o *redis.Options) error {
		o.MaxRetries = n
		return nil
	}
}

func WithDialTimeout(n time.Duration) Option {
	return func(o *redis.Options) error {
		o.DialTimeout = n
		return nil
	}
}

func WithReadTimeout(n time.Duration) Option {
	return func(o *redis.Options) error {
		o.ReadTimeout = n
		return nil
	}
}

func WithWriteTimeout(n time.Duration) Option {
	return func(o *redis.Options) error {
		o.WriteTimeout = n
		return nil
	}
}

func WithPoolSize(n int) Option {
	return func(o *redis.Options) error {
		o.PoolSize = n
		return nil
	}
}

func parseDsn(dsn string) (*redis.Options, error) {
	x, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	var db int
	if p := strings.TrimPrefix(x.Path, "/"); p != "" {
		if db, err = strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("invalid db %q", p)
		}
	}
	if x.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	user := x.User.Username()
	pwd, ok := x.User.Password()
	if !ok {
		if user != "" {
			pwd = user
			user = ""
		}
	}

	network := x.Scheme
	if network != "tcp" && network != "unix" {
		network = "tcp"
	}
	opt := &redis.Options{
		Network:  network,
		Addr:     x.Host,
		Username: user,
		Password: pwd,
		DB:       db,
	}

	return opt, nil
}
