package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/smithy-go"
	"github.com/briandowns/spinner"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/younsl/ec2ctl/internal/config"
	"github.com/younsl/ec2ctl/internal/logging"
	"github.com/younsl/ec2ctl/internal/signal"
	"github.com/younsl/ec2ctl/pkg/aws"
	"github.com/younsl/ec2ctl/pkg/utils"
)

// clientFactory builds the EC2 client used by every command
type clientFactory func(ctx context.Context, opts aws.ClientOptions) (aws.EC2API, error)

func newEC2Client(ctx context.Context, opts aws.ClientOptions) (aws.EC2API, error) {
	client, err := aws.NewEC2Client(ctx, opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// app carries the state shared by the root command and its subcommands
type app struct {
	v          *viper.Viper
	configFile string
	newClient  clientFactory

	cfg    *config.Config
	log    *log.Logger
	client aws.EC2API
	cancel context.CancelFunc
}

func newApp(newClient clientFactory) *app {
	return &app{
		v:         viper.New(),
		newClient: newClient,
	}
}

func main() {
	a := newApp(newEC2Client)
	err := a.rootCmd().Execute()
	a.close()

	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ec2ctl",
		Short: "CLI tool to manage the lifecycle of EC2 instances",
		Long: `ec2ctl lists, starts, stops, reboots, terminates and launches EC2 instances.
Commands that change state wait until the instance settles where that is needed.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default $HOME/.ec2ctl.yaml)")
	flags.StringP("region", "r", utils.DefaultRegion, "AWS region")
	flags.String("profile", "", "AWS shared config profile")
	flags.Duration("poll-interval", aws.DefaultPollInterval, "delay between status checks while waiting")
	flags.Duration("timeout", 0, "maximum time to wait for a state change (0 waits until interrupted)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	for _, name := range []string{"region", "profile", "poll-interval", "timeout", "log-level"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		a.listCmd(),
		a.statusCmd(),
		a.startCmd(),
		a.stopCmd(),
		a.rebootCmd(),
		a.terminateCmd(),
		a.runCmd(),
		a.ipCmd(),
		a.versionCmd(),
	)

	return rootCmd
}

// setup loads configuration, configures logging and builds the EC2 client
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, logger

	logger.WithFields(log.Fields{
		"region":  cfg.Region,
		"profile": cfg.Profile,
		"config":  config.ConfigPath(a.v),
	}).Debug("configuration loaded")

	ctx, cancel := signal.WatchInterrupt(cmd.Context(), logger)
	a.cancel = cancel
	cmd.SetContext(ctx)

	client, err := a.newClient(ctx, cfg.ClientOptions())
	if err != nil {
		return err
	}
	a.client = client

	return nil
}

func (a *app) close() {
	if a.cancel != nil {
		a.cancel()
	}
}

// controller returns an InstanceController configured from the loaded config
func (a *app) controller(opts ...aws.Option) *aws.InstanceController {
	base := []aws.Option{
		aws.WithPollInterval(a.cfg.PollInterval),
		aws.WithTimeout(a.cfg.Timeout),
		aws.WithLogger(a.log),
	}
	return aws.NewInstanceController(a.client, append(base, opts...)...)
}

// startSpinner creates and starts a spinner with the given message
func startSpinner(w io.Writer, message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	s.Start()
	return s
}

// printError reports err, including the AWS error code when there is one
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(w, "  AWS error code: %s\n", apiErr.ErrorCode())
		if msg := apiErr.ErrorMessage(); msg != "" {
			fmt.Fprintf(w, "  Message: %s\n", msg)
		}
	}
}
