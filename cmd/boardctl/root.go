package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SlpAus/board-site/internal/board"
	"github.com/SlpAus/board-site/internal/platform/config"
	"github.com/SlpAus/board-site/internal/platform/kvstore"
	"github.com/SlpAus/board-site/internal/platform/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errNoStore 在配置的存储不可用时返回
var errNoStore = errors.New(board.NoStoreMessage)

type app struct {
	configDir string
	verbose   bool
	timeout   time.Duration

	// openService 可在测试中替换
	openService func(ctx context.Context) (*board.Service, func(), error)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	a.openService = a.openFromConfig

	root := &cobra.Command{
		Use:           "boardctl",
		Short:         "读取或修改留言板的当前留言",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "config.yaml 所在目录")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "输出调试日志")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 10*time.Second, "存储操作超时")

	root.AddCommand(a.getCmd(), a.setCmd())
	return root
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "打印当前留言",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			svc, closeFn, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			msg, err := svc.Current(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <text...>",
		Short: "写入新留言，去掉首尾空白后为空则跳过",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			svc, closeFn, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			written, err := svc.Update(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintln(cmd.OutOrStdout(), "updated")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "skipped: empty message")
			}
			return nil
		},
	}
}

func (a *app) openFromConfig(ctx context.Context) (*board.Service, func(), error) {
	var dirs []string
	if a.configDir != "" {
		dirs = append(dirs, a.configDir)
	}
	cfg, err := config.LoadConfig(dirs...)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(a.verbose)
	if err != nil {
		return nil, nil, err
	}
	if !a.verbose {
		logger = zap.NewNop()
	}

	store, err := kvstore.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		return nil, nil, errNoStore
	}
	return board.NewService(store, logger), func() {
		_ = store.Close()
		_ = logger.Sync()
	}, nil
}
