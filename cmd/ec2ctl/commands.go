package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/younsl/ec2ctl/internal/models"
	"github.com/younsl/ec2ctl/internal/version"
	"github.com/younsl/ec2ctl/pkg/aws"
	"github.com/younsl/ec2ctl/pkg/formatter"
	"github.com/younsl/ec2ctl/pkg/utils"
)

func (a *app) listCmd() *cobra.Command {
	var tag, output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List EC2 instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "table" && output != "json" && output != "ids" {
				return fmt.Errorf("unsupported output format %q, must be table, json or ids", output)
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			ctrl := a.controller()

			var ids []string
			if tag != "" || output == "ids" {
				var err error
				if ids, err = ctrl.ListInstanceIDs(ctx, tag); err != nil {
					return err
				}
			}
			if output == "ids" {
				formatter.PrintInstanceIDs(out, ids)
				return nil
			}

			instances, err := ctrl.Instances(ctx, a.cfg.Region)
			if err != nil {
				return err
			}
			if tag != "" {
				instances = keepInstances(instances, ids)
			}

			if output == "json" {
				return formatter.PrintJSON(out, instances)
			}

			fmt.Fprintf(out, "Region: %s (%s)\n\n", a.cfg.Region, utils.GetRegionDescriptiveName(a.cfg.Region))
			formatter.PrintInstancesTable(out, instances)
			formatter.PrintInstancesSummary(out, instances)
			return nil
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only list instances whose first tag has a value")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json, ids)")

	return cmd
}

// keepInstances returns the instances whose ID is in ids
func keepInstances(instances []models.InstanceInfo, ids []string) []models.InstanceInfo {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	kept := []models.InstanceInfo{}
	for _, instance := range instances {
		if wanted[instance.InstanceID] {
			kept = append(kept, instance)
		}
	}
	return kept
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status INSTANCE_ID",
		Short: "Print the state of an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.controller().InstanceStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if status == "" {
				status = "unknown"
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func (a *app) startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start INSTANCE_ID",
		Short: "Start an instance and wait until it is running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			out := cmd.OutOrStdout()

			started := time.Now()
			s := startSpinner(out, fmt.Sprintf("Starting %s ...", id))
			err := a.controller().StartInstance(cmd.Context(), id)
			s.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "✓ %s is running - Completed in %.2f seconds\n", id, time.Since(started).Seconds())
			return nil
		},
	}
}

func (a *app) stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop INSTANCE_ID",
		Short: "Request an instance stop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.controller().StopInstance(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stop requested for %s\n", args[0])
			return nil
		},
	}
}

func (a *app) rebootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reboot INSTANCE_ID",
		Short: "Request an instance reboot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.controller().RebootInstance(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reboot requested for %s\n", args[0])
			return nil
		},
	}
}

func (a *app) terminateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terminate INSTANCE_ID",
		Short: "Request instance termination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.controller().TerminateInstance(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Termination requested for %s\n", args[0])
			return nil
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	var (
		name        string
		waitRunning bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch a new instance",
		Long: `Launch a new instance. Flags not given fall back to the launch section
of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := aws.NewRunInstancesInput(a.cfg.Launch)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var s *spinner.Spinner
			if waitRunning {
				s = startSpinner(out, "Launching instance ...")
			}

			id, err := a.controller(aws.WithWaitOnRun(waitRunning)).RunInstance(cmd.Context(), name, input)
			if s != nil {
				s.Stop()
			}

			// the id is printed even when tagging or waiting failed
			if id != "" {
				fmt.Fprintln(out, id)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("image", "", "AMI ID")
	flags.String("type", "", "instance type")
	flags.String("key", "", "key pair name")
	flags.String("subnet", "", "subnet ID")
	flags.StringSlice("security-group", nil, "security group IDs (comma separated)")
	flags.String("user-data", "", "user data script, base64 encoded on launch")
	flags.StringVar(&name, "name", "", "value for the Name tag")
	flags.BoolVar(&waitRunning, "wait", false, "wait until the instance is running")

	launchKeys := map[string]string{
		"image":          "launch.image-id",
		"type":           "launch.instance-type",
		"key":            "launch.key-name",
		"subnet":         "launch.subnet-id",
		"security-group": "launch.security-group-ids",
		"user-data":      "launch.user-data",
	}
	for flag, key := range launchKeys {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func (a *app) ipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ip INSTANCE_ID",
		Short: "Print the public IP of a running instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip, err := a.controller().InstancePublicIP(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ip == "" {
				return fmt.Errorf("instance %s has no public IP, it is not running or has none assigned", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), ip)
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// no AWS access needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if asJSON {
				return formatter.PrintJSON(cmd.OutOrStdout(), info)
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print version information as JSON")

	return cmd
}
