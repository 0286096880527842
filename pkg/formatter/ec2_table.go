package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/younsl/ec2ctl/internal/models"
)

// PrintInstancesTable prints a formatted table of EC2 instances
func PrintInstancesTable(w io.Writer, instances []models.InstanceInfo) {
	if len(instances) == 0 {
		fmt.Fprintln(w, "No instances found.")
		return
	}

	// Sort a copy by name, then by instance ID
	instances = append([]models.InstanceInfo(nil), instances...)
	sort.SliceStable(instances, func(i, j int) bool {
		if instances[i].Name == instances[j].Name {
			return instances[i].InstanceID < instances[j].InstanceID
		}
		return instances[i].Name < instances[j].Name
	})

	// kubectl style tabwriter
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, "INSTANCE ID\tNAME\tSTATE\tTYPE\tZONE\tPUBLIC IP\tLAUNCHED\tSTOPPED SINCE")

	for _, instance := range instances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			instance.InstanceID,
			getInstanceName(instance.Name),
			instance.State,
			valueOrDash(instance.InstanceType),
			valueOrDash(instance.AvailabilityZone),
			valueOrDash(instance.PublicIP),
			relativeTime(instance.LaunchTime),
			formatDate(instance.StoppedTime),
		)
	}

	tw.Flush()
}

// PrintInstancesSummary prints the number of instances in each state
func PrintInstancesSummary(w io.Writer, instances []models.InstanceInfo) {
	if len(instances) == 0 {
		return
	}

	counts := map[string]int{}
	for _, instance := range instances {
		counts[instance.State]++
	}

	fmt.Fprintln(w, "\n## EC2 Instances Summary")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tINSTANCE COUNT")

	states := []string{
		models.StatePending,
		models.StateRunning,
		models.StateStopping,
		models.StateStopped,
		models.StateShuttingDown,
		models.StateTerminated,
	}
	for _, state := range states {
		if counts[state] > 0 {
			fmt.Fprintf(tw, "%s\t%d\n", state, counts[state])
		}
	}
	fmt.Fprintf(tw, "Total:\t%d\n", len(instances))

	tw.Flush()
}

// PrintInstanceIDs prints one instance ID per line
func PrintInstanceIDs(w io.Writer, ids []string) {
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
}
