package config

import (
	"io"
	"time"

	"github.com/spf13/viper"
)

type Provider interface {
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetTime(key string) time.Time
	GetBool(key string) bool
	GetStringMap(key string) map[string]any
	GetStringMapString(key string) map[string]string
	GetStringMapStringSlice(key string) map[string][]string
	GetStringSlice(key string) []string
	GetIntSlice(key string) []int
	Get(key string) any
	Set(key string, value any)
	SetDefault(key string, value any)
	IsSet(key string) bool

	// Child 子配置 key 不存在时返回空配置
	Child(key string) Provider
	Decode(key string, value any) error
}

// LoadConfig 从文件加载 格式由扩展名决定
func LoadConfig(path string) (Provider, error) {
	p := viper.New()
	p.SetConfigFile(path)
	if err := p.ReadInConfig(); err != nil {
		return nil, err
	}
	return &defaultProvider{Viper: p}, nil
}

// LoadConfigFromReader 从 reader 加载 configType 如 yaml json toml
func LoadConfigFromReader(r io.Reader, configType string) (Provider, error) {
	p := viper.New()
	p.SetConfigType(configType)
	if err := p.ReadConfig(r); err != nil {
		return nil, err
	}
	return &defaultProvider{Viper: p}, nil
}

// Empty 空配置
func Empty() Provider {
	return &defaultProvider{Viper: viper.New()}
}

type defaultProvider struct {
	*viper.Viper
}

func (p *defaultProvider) Child(key string) Provider {
	if sub := p.Viper.Sub(key); sub != nil {
		return &defaultProvider{Viper: sub}
	}
	return Empty()
}

func (p *defaultProvider) Decode(key string, value any) error {
	return p.Viper.UnmarshalKey(key, value)
}
