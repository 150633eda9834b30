package main

import (
	"fmt"
	"os"
	"time"

	"github.com/parkingwang/apidoc"
	"github.com/parkingwang/apidoc/pkg/store/database"
	"github.com/parkingwang/apidoc/pkg/store/redis"
	"github.com/spf13/cobra"
)

var info = apidoc.AppInfo{
	Name:        "person-service",
	Description: "人员管理演示",
	Author:      "parkingwang",
	License:     "MIT",
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apidoc-example",
		Short:         "Person service with generated Swagger 2.0 document",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			if path != "" {
				apidoc.SetConfig(path)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.AddCommand(newServeCmd(), newSpecCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := apidoc.New(info)
			app.Provide(newPersonStore)
			app.Run(func(store PersonStore) (apidoc.Servicer, error) {
				srv, err := app.CreateWebServer()
				if err != nil {
					return nil, err
				}
				initRoutes(srv.Router(), store)
				return srv, nil
			})
			return nil
		},
	}
}

func newSpecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Print the Swagger 2.0 document without starting the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			var cfg apidoc.WebConfig
			if err := apidoc.Conf().Decode("server.web", &cfg); err != nil {
				return err
			}
			cfg.OpenAPI.Enable = true
			srv, err := apidoc.NewWebServer(info, cfg)
			if err != nil {
				return err
			}
			initRoutes(srv.Router(), newMemoryStore())

			var data []byte
			switch format {
			case "json":
				data, err = srv.Spec().JSON()
			case "yaml":
				data, err = srv.Spec().YAML()
			default:
				return fmt.Errorf("unknown format %q, want json or yaml", format)
			}
			if err != nil {
				return err
			}
			if output != "" {
				return os.WriteFile(output, data, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Output format (json|yaml)")
	cmd.Flags().StringP("output", "o", "", "Write the document to file instead of stdout")
	return cmd
}

// newPersonStore 配置了数据库时使用数据库 否则使用内存
// 配置了 redis 时缓存单个人员的查询
func newPersonStore() (PersonStore, error) {
	var store PersonStore = newMemoryStore()
	if database.Has("default") {
		s, err := newGormStore()
		if err != nil {
			return nil, err
		}
		store = s
	}
	if redis.Has("default") {
		store = newCachedStore(store, redis.Get(), 5*time.Minute)
	}
	return store, nil
}
