package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nathoo/rosebot/config"
	"github.com/nathoo/rosebot/engine"
	"github.com/nathoo/rosebot/loader"
	"github.com/nathoo/rosebot/store"
	"github.com/nathoo/rosebot/transport"
)

var runAddr string

// runCmd connects to a game server and automates the session.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a game server and run the automation",
	Long: `Connect to a game server and run the automation.

Vitals come from status prompts in the game output. Room contents do not:
this command does not track rooms, so until a room snapshot is supplied
through engine.SetRoom no death is recognised and offense never starts.
Shield upkeep, healing, the critical-health gate and coin looting work
without one.

The profile (a .lua file or a directory of them) is reloaded when it
changes on disk.`,
	Example: `  rosebot run --addr mud.example.org:4000 --profile cleric.lua
  ROSEBOT_SERVER_ADDRESS=mud.example.org:4000 rosebot run`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	runCmd.Flags().StringVar(&runAddr, "addr", "", "Game server host:port (overrides server.address)")
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := appCfg.Server.Address
	if runAddr != "" {
		addr = runAddr
	}

	auto, err := loadProfile()
	if err != nil {
		return err
	}
	cfgStore := config.NewStore(auto)
	cfgStore.Subscribe(func(c config.AutomationConfig) {
		logger.Info("automation config applied",
			zap.Bool("shield", c.AutoShield),
			zap.Bool("gong", c.AutoGong),
			zap.Bool("attack", c.AutoAttack),
			zap.Bool("heal", c.AutoHeal),
			zap.Bool("loot", c.AutoLoot))
	})
	eng := engine.New(cfgStore, engineOptions(), logger)

	if appCfg.Store.Path != "" {
		hist, err := store.Open(appCfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer hist.Close()
		hist.Attach(eng.Bus())
	}

	conn, err := transport.Dial(ctx, addr, transport.Options{
		DialTimeout: appCfg.Server.DialTimeout,
		SendQueue:   appCfg.Server.SendQueue,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("connected", zap.String("addr", addr))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return conn.Run(gctx) })
	g.Go(func() error {
		err := eng.Run(gctx, conn)
		conn.Disconnect()
		return err
	})

	if appCfg.Profile != "" {
		w, err := config.NewWatcher(appCfg.Profile, cfgStore, func(path string) (config.AutomationConfig, error) {
			return loader.Load(path, logger)
		}, logger)
		if err != nil {
			logger.Warn("profile hot reload disabled", zap.Error(err))
		} else if err := w.Start(gctx); err != nil {
			logger.Warn("profile hot reload disabled", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, transport.ErrClosed) {
		logger.Info("session ended")
		return nil
	}
	return err
}
