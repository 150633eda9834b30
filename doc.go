package apidoc

import (
	"runtime/debug"

	"github.com/parkingwang/apidoc/pkg/http/web/oas"
)

type AppInfo struct {
	// app name
	Name string
	// 描述
	Description string
	// 版本号
	Version string
	// 作者 文档中的 contact
	Author string
	License string
	// 私有项目 文档 license 固定为 Proprietary
	Private bool
}

// Project 转换为文档使用的项目信息
func (a AppInfo) Project() oas.ProjectInfo {
	return oas.ProjectInfo{
		Name:        a.Name,
		Description: a.Description,
		Version:     a.Version,
		Author:      a.Author,
		License:     a.License,
		Private:     a.Private,
	}
}

func getVCSVersion() string {
	info, ok := debug.ReadBuildInfo()
	if ok {
		for _, v := range info.Settings {
			if v.Key == "vcs.revision" {
				return v.Value
			}
		}
	}
	return ""
}
