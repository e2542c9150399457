package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/newbpydev/fshook/pkg/fsh"
)

// newTopCmd creates the `fsdadm top` command: a live terminal view of the
// disturbed mounts while a background read load runs against them.
func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Watch disturbed mounts live",
		Long: `Install the configured policy on every sandbox mount, generate a
steady read load and watch per-mount short-read accounting update live.

Keys: q quits.`,
		RunE: runTop,
	}

	cmd.Flags().Duration("interval", 500*time.Millisecond, "refresh interval")
	cmd.Flags().Int("batch", 25, "reads issued per mount per refresh")
	return cmd
}

func runTop(cmd *cobra.Command, _ []string) error {
	sb, err := newSandbox(cmd)
	if err != nil {
		return err
	}
	defer sb.close()

	pol := sb.cfg.Policy.Policy()
	for _, path := range sb.cfg.Mounts {
		if err := sb.control.Disturb(path, pol); err != nil {
			return err
		}
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	batch, _ := cmd.Flags().GetInt("batch")

	model := newTopModel(sb, interval, batch)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// mountStats accumulates what the read load observed on one mount.
type mountStats struct {
	reads    int64
	short    int64
	withheld int64
}

type tickMsg time.Time

// topModel is the bubbletea model behind `fsdadm top`.
type topModel struct {
	sb       *sandbox
	interval time.Duration
	batch    int

	table   table.Model
	spinner spinner.Model
	stats   map[string]*mountStats
	start   time.Time
}

var topTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 2)

func newTopModel(sb *sandbox, interval time.Duration, batch int) *topModel {
	columns := []table.Column{
		{Title: "Mount", Width: 14},
		{Title: "Policy", Width: 16},
		{Title: "Reads", Width: 10},
		{Title: "Short", Width: 10},
		{Title: "Withheld", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &topModel{
		sb:       sb,
		interval: interval,
		batch:    batch,
		table:    t,
		spinner:  s,
		stats:    make(map[string]*mountStats),
		start:    time.Now(),
	}
}

func (m *topModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick())
}

func (m *topModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *topModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tickMsg:
		m.runBatch()
		m.refreshRows()
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// runBatch issues the read load for one refresh and folds the outcomes
// into the per-mount stats.
func (m *topModel) runBatch() {
	list, err := m.sb.control.GetList(64)
	if err != nil {
		return
	}
	for _, st := range list {
		stats, ok := m.stats[st.Path]
		if !ok {
			stats = &mountStats{}
			m.stats[st.Path] = stats
		}
		for i := 0; i < m.batch; i++ {
			req := &fsh.ReadRequest{Resid: 4096}
			if err := m.sb.host.Read(st.Path, req); err != nil {
				continue
			}
			stats.reads++
			if req.Resid > 0 {
				stats.short++
				stats.withheld += req.Resid
			}
		}
	}
}

func (m *topModel) refreshRows() {
	list, err := m.sb.control.GetList(64)
	if err != nil {
		return
	}
	rows := make([]table.Row, 0, len(list))
	for _, st := range list {
		stats := m.stats[st.Path]
		if stats == nil {
			stats = &mountStats{}
		}
		rows = append(rows, table.Row{
			st.Path,
			fmt.Sprintf("%d%% [%d..%d]", st.Policy.ChancePercent, st.Policy.Range[0], st.Policy.Range[1]),
			fmt.Sprintf("%d", stats.reads),
			fmt.Sprintf("%d", stats.short),
			fmt.Sprintf("%d B", stats.withheld),
		})
	}
	m.table.SetRows(rows)
}

func (m *topModel) View() string {
	info, err := m.sb.control.GetInfo()
	status := "status unavailable"
	if err == nil {
		status = fmt.Sprintf("hooks=%d omni=%v uptime=%s",
			info.Count, info.OmniOn, time.Since(m.start).Round(time.Second))
	}

	return topTitleStyle.Render("fsdadm top") + "\n" +
		m.spinner.View() + " " + status + "\n\n" +
		m.table.View() + "\n\nq: quit\n"
}
