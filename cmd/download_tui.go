package cmd

import (
	"context"
	"fmt"

	"switch-mod-downloader/logger"
	"switch-mod-downloader/mods"
	"switch-mod-downloader/ui"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// downloadProgressMsg wraps a downloader event for the TUI.
type downloadProgressMsg mods.Event

// downloadDoneMsg is sent once DownloadAll returns.
type downloadDoneMsg struct {
	report mods.Report
	err    error
}

// runFunc performs the download, reporting progress through onProgress.
type runFunc func(onProgress func(mods.Event)) (mods.Report, error)

// DownloadModel controls the UI for the download command
type DownloadModel struct {
	spinner spinner.Model
	events  chan tea.Msg
	run     runFunc
	cancel  context.CancelFunc

	// State
	status      string
	downloading []string
	errors      []string
	done        bool
	cancelling  bool

	// Counters
	finished int
	total    int

	report mods.Report
	err    error
}

func initialDownloadModel(total int, run runFunc, cancel context.CancelFunc) DownloadModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return DownloadModel{
		spinner: s,
		// Sized so the download never blocks on a TUI that already quit.
		events: make(chan tea.Msg, 2*total+1),
		run:    run,
		cancel: cancel,
		status: "Starting downloads...",
		total:  total,
	}
}

func (m DownloadModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startDownload(),
		m.waitForActivity(),
	)
}

func (m DownloadModel) startDownload() tea.Cmd {
	return func() tea.Msg {
		go func() {
			defer close(m.events)
			report, err := m.run(func(ev mods.Event) {
				m.events <- downloadProgressMsg(ev)
			})
			m.events <- downloadDoneMsg{report: report, err: err}
		}()
		return nil
	}
}

func (m DownloadModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m DownloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done {
			return m, tea.Quit
		}
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			if m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
			m.status = "Cancelling, waiting for running transfers..."
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case downloadProgressMsg:
		name := msg.Job.Destination
		switch msg.Kind {
		case mods.EventStarted:
			m.downloading = append(m.downloading, name)
		case mods.EventCompleted:
			m.removeFromDownloading(name)
			m.finished = msg.Finished
		case mods.EventFailed:
			m.removeFromDownloading(name)
			m.finished = msg.Finished
			m.errors = append(m.errors, fmt.Sprintf("%s: %v", name, msg.Err))
		}
		if !m.cancelling {
			m.status = fmt.Sprintf("Downloading %d/%d files...", m.finished, m.total)
		}
		return m, m.waitForActivity()

	case downloadDoneMsg:
		m.done = true
		m.report = msg.report
		m.err = msg.err
		m.status = "Finished"
		if msg.err != nil {
			logger.Log.Debugw("Download finished with errors", zap.Error(msg.err))
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *DownloadModel) removeFromDownloading(name string) {
	for i, v := range m.downloading {
		if v == name {
			m.downloading = append(m.downloading[:i], m.downloading[i+1:]...)
			return
		}
	}
}

func (m DownloadModel) View() string {
	var symbol string
	if m.done {
		symbol = ui.Success.Render("✓")
	} else {
		symbol = m.spinner.View()
	}

	s := fmt.Sprintf("\n %s %s\n\n", symbol, m.status)

	if len(m.downloading) > 0 {
		s += ui.Bold.Render("Downloading:") + "\n"
		shown := m.downloading
		if len(shown) > 8 {
			shown = shown[:8]
		}
		for _, d := range shown {
			s += fmt.Sprintf("  • %s\n", ui.Truncate(d, 72))
		}
		if rest := len(m.downloading) - len(shown); rest > 0 {
			s += ui.Muted.Render(fmt.Sprintf("  … and %d more", rest)) + "\n"
		}
		s += "\n"
	}

	if len(m.errors) > 0 {
		s += ui.Failure.Render("Errors:") + "\n"
		for _, e := range m.errors {
			s += fmt.Sprintf("  • %s\n", e)
		}
		s += "\n"
	}

	return s
}

// downloadWithTUI runs the download behind the bubbletea progress view.
func downloadWithTUI(ctx context.Context, svc *mods.Service, games []mods.Game) (mods.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	run := func(onProgress func(mods.Event)) (mods.Report, error) {
		svc.Downloader.OnProgress = onProgress
		return svc.DownloadMods(ctx, games)
	}

	m := initialDownloadModel(len(mods.Jobs(games)), run, cancel)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		logger.Log.Errorw("Failed to run progress view", zap.Error(err))
		return mods.Report{}, err
	}
	dm := final.(DownloadModel)
	return dm.report, dm.err
}
