package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sphere-panels/internal/commands"
	"sphere-panels/internal/config"
	"sphere-panels/internal/debug"
	"sphere-panels/internal/graphics"
	"sphere-panels/internal/input"
	"sphere-panels/internal/logger"
	"sphere-panels/internal/scene"
	"sphere-panels/internal/session"
	"sphere-panels/internal/terminal"
)

const defaultConfigPath = config.ConfigPath

func newRunCommand(configPath *string) *cobra.Command {
	var (
		watch bool
		touch bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the viewer window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*configPath, watch, touch)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", true, "reload tunables when the config file changes")
	cmd.Flags().BoolVar(&touch, "touch", false, "read touch points instead of the mouse")
	return cmd
}

func run(configPath string, watch, touch bool) error {
	exported, err := config.LoadDotEnv(config.DotEnvPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LoggerOptions())
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	if exported > 0 {
		log.Debug("env file loaded", zap.String("path", config.DotEnvPath), zap.Int("vars", exported))
	}

	s, err := session.New(cfg, log)
	if err != nil {
		return err
	}

	if watch {
		err := config.Watch(configPath, s.QueueTunables, func(err error) {
			log.Warn("config reload rejected", zap.Error(err))
		})
		if err != nil {
			log.Info("config watch disabled", zap.String("path", configPath), zap.Error(err))
		}
	}

	reg := commands.NewRegistry()
	cmdLog := log.Named("cmd")
	commands.RegisterPanels(reg, s, cmdLog.Log)
	term := terminal.New(cmdLog, reg)

	dbg := debug.New()
	dbg.ShowFPS = cfg.Debug.ShowFPS
	dbg.ShowState = cfg.Debug.ShowState
	dbg.State = func() string {
		if ref, ok := s.View.Selected(); ok {
			return fmt.Sprintf("%s %d/%d", s.State(), ref.Body, ref.Panel)
		}
		return s.State()
	}

	scn := scene.New()
	host := input.New(s)
	host.Touch = touch

	update := func(dt float64) {
		// the key that closes the terminal must not also reach the scene
		wasOpen := term.IsOpen()
		term.Update()
		host.Poll(wasOpen || term.IsOpen())
		s.FrameTick(dt)
	}
	draw := func() {
		scn.Draw(s.Snapshot())
		term.Draw()
		dbg.Draw()
	}
	win := graphics.Window{Width: cfg.Window.Width, Height: cfg.Window.Height, Title: cfg.Window.Title, FPS: cfg.Window.FPS}
	graphics.Run(win, s.Resize, update, draw)
	return nil
}
