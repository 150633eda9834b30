package apidoc

import "github.com/parkingwang/apidoc/internal/config"

// SetConfig 加载配置文件
func SetConfig(path string) {
	p, err := config.LoadConfig(path)
	if err != nil {
		panic(err)
	}
	defaultConfig = p
}

var defaultConfig = config.Empty()

// Conf 全局配置 未调用 SetConfig 时为空配置
func Conf() config.Provider {
	return defaultConfig
}
