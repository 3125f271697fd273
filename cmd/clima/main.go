package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"clima/internal/communicators"
	_ "clima/internal/communicators/telegram"
	_ "clima/internal/communicators/web"
	"clima/internal/config"
	"clima/internal/gateway"
	"clima/internal/logging"
	"clima/internal/onboarding"
	"clima/internal/status"
	"clima/internal/tui"

	"github.com/spf13/cobra"
)

// tuiLogFile keeps log lines off the alternate screen.
const tuiLogFile = "bin/clima.log"

type app struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "clima",
		Short:        "Chat about the weather stations of the iCrop network",
		SilenceUsage: true,
		RunE:         a.runChat,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "config file (JSON)")

	root.AddCommand(
		&cobra.Command{
			Use:   "chat",
			Short: "Interactive chat in the terminal",
			RunE:  a.runChat,
		},
		&cobra.Command{
			Use:   "ask <pergunta>",
			Short: "Answer one question and exit",
			Args:  cobra.MinimumNArgs(1),
			RunE:  a.runAsk,
		},
		&cobra.Command{
			Use:   "tui",
			Short: "Full-screen chat",
			RunE:  a.runTUI,
		},
		a.serveCmd(),
		&cobra.Command{
			Use:   "status",
			Short: "Check that the iCrop API answers",
			RunE:  a.runStatus,
		},
		a.configCmd(),
	)
	return root
}

// openGateway loads the configuration and builds the gateway. logFile, when
// set, is used unless the configuration names its own log file.
func (a *app) openGateway(logFile string) (*gateway.Gateway, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w (run 'clima config init' or set CLIMA_ICROP_API_KEY)", err)
	}

	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}
	if opts.File == "" {
		opts.File = logFile
	}
	if opts.File != "" {
		if opts.File, err = config.ExpandPath(opts.File); err != nil {
			return nil, err
		}
	}
	return gateway.New(cfg, logging.New(opts))
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func (a *app) runChat(cmd *cobra.Command, _ []string) error {
	gw, err := a.openGateway("")
	if err != nil {
		return err
	}
	defer gw.Close()

	ctx, stop := signalContext(cmd)
	defer stop()
	return gw.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}

func (a *app) runAsk(cmd *cobra.Command, args []string) error {
	gw, err := a.openGateway("")
	if err != nil {
		return err
	}
	defer gw.Close()

	return gw.Execute(cmd.Context(), strings.Join(args, " "), cmd.OutOrStdout())
}

func (a *app) runTUI(_ *cobra.Command, _ []string) error {
	gw, err := a.openGateway(tuiLogFile)
	if err != nil {
		return err
	}
	defer gw.Close()

	return tui.Run(gw.NewService("tui"))
}

func (a *app) serveCmd() *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web API and the Telegram bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := a.openGateway("")
			if err != nil {
				return err
			}
			defer gw.Close()

			list := communicators.All()
			if len(only) > 0 {
				list = list[:0]
				for _, id := range only {
					c, err := communicators.Get(strings.TrimSpace(id))
					if err != nil {
						return err
					}
					list = append(list, c)
				}
			}

			ctx, stop := signalContext(cmd)
			defer stop()
			return communicators.Run(ctx, gw, list)
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "communicators to start (web, telegram); all by default")
	return cmd
}

func (a *app) runStatus(cmd *cobra.Command, _ []string) error {
	gw, err := a.openGateway("")
	if err != nil {
		return err
	}
	defer gw.Close()

	r := gw.Prober().Check(cmd.Context())
	fmt.Fprintln(cmd.OutOrStdout(), gateway.FormatStatus(r))
	if r.Status != status.StateOperational {
		return errors.New("iCrop API unavailable")
	}
	return nil
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create or update the config file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromFile(a.configPath)
			if errors.Is(err, fs.ErrNotExist) {
				cfg, err = config.Default(), nil
			}
			if err != nil {
				return err
			}

			w := onboarding.NewWizard(cmd.InOrStdin(), cmd.OutOrStdout())
			if err := w.Run(cfg); err != nil {
				return err
			}
			if err := cfg.SaveToFile(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuração salva em %s\n", a.configPath)
			return nil
		},
	})
	return cmd
}
