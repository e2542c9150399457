package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/newbpydev/fshook/pkg/fsh"
	"github.com/newbpydev/fshook/pkg/vfs"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	shortStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5AF78E"))
)

// newDemoCmd creates the `fsdadm demo` command: a scripted walkthrough of
// the disturber against the sandbox mounts.
func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted disturbance walkthrough",
		Long: `Mount the sandbox filesystems, install a per-mount disturbance
policy plus an omnipresent one, run a batch of reads on every mount and
print what the callers observed.

Examples:
  fsdadm demo
  fsdadm demo --chance 50 --range 5:15 --reads 20`,
		RunE: runDemo,
	}

	cmd.Flags().Uint64("chance", 0, "disturbance chance percent (default from config)")
	cmd.Flags().String("range", "", "withheld byte range as lo:hi (default from config)")
	cmd.Flags().Int("reads", 10, "reads to issue per mount")
	cmd.Flags().Int64("want", 4096, "bytes requested per read")
	return cmd
}

func runDemo(cmd *cobra.Command, _ []string) error {
	sb, err := newSandbox(cmd)
	if err != nil {
		return err
	}
	defer sb.close()

	pol := sb.cfg.Policy.Policy()
	if chance, _ := cmd.Flags().GetUint64("chance"); cmd.Flags().Changed("chance") {
		pol.ChancePercent = chance
	}
	if rng, _ := cmd.Flags().GetString("range"); rng != "" {
		r, err := parseRange(rng)
		if err != nil {
			return err
		}
		pol.Range = r
	}
	reads, _ := cmd.Flags().GetInt("reads")
	want, _ := cmd.Flags().GetInt64("want")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("fsdadm demo"))
	fmt.Fprintf(out, "policy: %d%% chance, withholding %d..%d bytes\n\n",
		pol.ChancePercent, pol.Range[0], pol.Range[1])

	// Disturb every seeded mount and set the omnipresent policy, then let
	// one more mount appear so the mount callback installs its hook.
	for _, path := range sb.cfg.Mounts {
		if err := sb.control.Disturb(path, pol); err != nil {
			return err
		}
	}
	if err := sb.control.DisturbOmni(pol); err != nil {
		return err
	}
	if _, err := sb.host.Mount("/mnt/late", vfs.MemOps(mountSize)); err != nil {
		return err
	}

	info, err := sb.control.GetInfo()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s enabled=%v hooks=%d omni=%v\n\n",
		headerStyle.Render("status:"), info.Enabled, info.Count, info.OmniOn)

	list, err := sb.control.GetList(16)
	if err != nil {
		return err
	}
	for _, st := range list {
		fmt.Fprintf(out, "  %s  %d%% [%d..%d]\n",
			st.Path, st.Policy.ChancePercent, st.Policy.Range[0], st.Policy.Range[1])
	}
	fmt.Fprintln(out)

	for _, st := range list {
		var disturbed, total int
		var withheld int64
		for i := 0; i < reads; i++ {
			req := &fsh.ReadRequest{Resid: want}
			if err := sb.host.Read(st.Path, req); err != nil {
				return err
			}
			total++
			if req.Resid > 0 {
				disturbed++
				withheld += req.Resid
			}
		}

		line := fmt.Sprintf("%-12s %d/%d reads short, %d bytes withheld", st.Path, disturbed, total, withheld)
		if disturbed > 0 {
			fmt.Fprintln(out, shortStyle.Render(line))
		} else {
			fmt.Fprintln(out, okStyle.Render(line))
		}
	}

	return nil
}
