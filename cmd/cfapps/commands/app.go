package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/spf13/cobra"
)

// InstanceView is the rendered form of one app instance.
type InstanceView struct {
	Index    int     `json:"index"     yaml:"index"`
	State    string  `json:"state"     yaml:"state"`
	CPU      float64 `json:"cpu"       yaml:"cpu"`
	MemoryMB int64   `json:"memory_mb" yaml:"memory_mb"`
	Uptime   string  `json:"uptime"    yaml:"uptime"`
	Host     string  `json:"host"      yaml:"host"`
}

// AppDetails combines the summary and the instance stats of an app.
type AppDetails struct {
	Summary   *capi.AppSummary `json:"summary"   yaml:"summary"`
	Instances []InstanceView   `json:"instances" yaml:"instances"`
}

// NewAppCommand creates the app details command.
func NewAppCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "app APP_GUID",
		Short: "Show details of an app",
		Long:  "Show the summary, routes, bound services and per-instance stats of an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, args[0])
		},
	}
}

func runApp(cmd *cobra.Command, appGUID string) error {
	runtime, err := newRuntime(cmd, "")
	if err != nil {
		return err
	}
	defer runtime.Close()

	ctx := context.Background()
	client := runtime.Client

	summaries := capi.Async(ctx, func(ctx context.Context) (*capi.AppSummary, error) {
		return client.AppSummary(ctx, appGUID)
	})
	stats := capi.Async(ctx, func(ctx context.Context) (capi.AppStats, error) {
		return client.AppStats(ctx, appGUID)
	})

	summary, err := capi.Await(ctx, summaries)
	if err != nil {
		return fmt.Errorf("failed to get app summary: %w", err)
	}

	details := AppDetails{Summary: summary}

	instanceStats, err := capi.Await(ctx, stats)
	if err != nil {
		// Stopped apps have no stats.
		warnf(cmd, "could not get instance stats: %v", err)
	} else {
		details.Instances = instanceViews(instanceStats)
	}

	return render(cmd, details, func(w io.Writer) error {
		return renderAppDetails(w, details)
	})
}

// instanceViews flattens stats ordered by instance index.
func instanceViews(stats capi.AppStats) []InstanceView {
	views := make([]InstanceView, 0, len(stats))

	for key, instance := range stats {
		index, err := strconv.Atoi(key)
		if err != nil {
			continue
		}

		view := InstanceView{Index: index, State: instance.State}
		if instance.Stats != nil {
			view.CPU = instance.Stats.Usage.CPU * constants.PercentageMultiplier
			view.MemoryMB = instance.Stats.Usage.Mem / constants.BytesPerMegabyte
			view.Uptime = (time.Duration(instance.Stats.Uptime) * time.Second).String()
			view.Host = instance.Stats.Host
		}

		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].Index < views[j].Index
	})

	return views
}

func renderAppDetails(w io.Writer, details AppDetails) error {
	summary := details.Summary

	buildpack := summary.DetectedBuildpack
	if summary.Buildpack != nil && *summary.Buildpack != "" {
		buildpack = *summary.Buildpack
	}

	if buildpack == "" {
		buildpack = constants.NotAvailable
	}

	table := newTable(w, "Property", "Value")
	_ = table.Append("Name", summary.Name)
	_ = table.Append("GUID", summary.GUID)
	_ = table.Append("State", summary.State)
	_ = table.Append("Instances", fmt.Sprintf("%d/%d", summary.RunningInstances, summary.Instances))
	_ = table.Append("Memory", fmt.Sprintf("%dM", summary.Memory))
	_ = table.Append("Disk", fmt.Sprintf("%dM", summary.DiskQuota))
	_ = table.Append("Buildpack", buildpack)

	err := renderTable(table)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w)

	if len(summary.Routes) == 0 {
		_, _ = fmt.Fprintln(w, "Routes: "+constants.None)
	} else {
		urls := make([]string, 0, len(summary.Routes))
		for _, route := range summary.Routes {
			urls = append(urls, route.URL())
		}

		_, _ = fmt.Fprintln(w, "Routes: "+strings.Join(urls, ", "))
	}

	if len(summary.Services) > 0 {
		_, _ = fmt.Fprintln(w)

		services := newTable(w, "Service", "Name", "Plan", "Bound Apps")
		for _, service := range summary.Services {
			_ = services.Append(service.Label(), service.Name, service.PlanName(), strconv.Itoa(service.BoundAppCount))
		}

		err = renderTable(services)
		if err != nil {
			return err
		}
	}

	if len(details.Instances) == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(w)

	instances := newTable(w, "#", "State", "CPU", "Memory", "Uptime")
	for _, instance := range details.Instances {
		_ = instances.Append(
			strconv.Itoa(instance.Index),
			instance.State,
			fmt.Sprintf("%.1f%%", instance.CPU),
			fmt.Sprintf("%dM", instance.MemoryMB),
			instance.Uptime,
		)
	}

	return renderTable(instances)
}
