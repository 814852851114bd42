package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-multierror"
	sampler "github.com/l0rem1psum/sampler"
	samplerutils "github.com/l0rem1psum/sampler/utils"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	valueStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).MarginBottom(1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// pollMsg drives the consumer on the UI's own schedule.
type pollMsg time.Time

func poll(period time.Duration) tea.Cmd {
	return tea.Tick(period, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// monitorModel is both the command source and the render sink of the sampler.
type monitorModel struct {
	controller *sampler.Controller
	consumer   *sampler.Consumer
	pollPeriod time.Duration
	logger     *slog.Logger

	value    string
	state    sampler.State
	controls sampler.Controls
	rate     float64
	lastErr  error
}

var _ sampler.Renderer = &monitorModel{}

func (m *monitorModel) RenderState(s sampler.State, c sampler.Controls) {
	m.state = s
	m.controls = c
}

func (m *monitorModel) RenderSample(s sampler.Sample, rateHz float64) {
	m.value = fmt.Sprintf("%0.6f", s.Value)
	m.rate = rateHz
}

func (m *monitorModel) Init() tea.Cmd {
	return poll(m.pollPeriod)
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			if m.controls.Start {
				m.send(sampler.CommandStart)
			}
		case "x":
			if m.controls.Stop {
				m.send(sampler.CommandStop)
			}
		case "q", "ctrl+c":
			m.send(sampler.CommandShutdown)
			return m, tea.Quit
		}
	case pollMsg:
		m.consumer.Poll()
		select {
		case <-m.controller.Done():
			if m.state != sampler.StateStopping {
				// The worker exited without us asking (signal): drain what is left.
				for m.consumer.Poll() > 0 {
				}
			}
			return m, tea.Quit
		default:
		}
		return m, poll(m.pollPeriod)
	}
	return m, nil
}

func (m *monitorModel) send(cmd sampler.Command) {
	m.lastErr = m.controller.Send(cmd)
	if m.lastErr != nil && !errors.Is(m.lastErr, sampler.ErrSamplerStopped) {
		m.logger.Warn("Command not delivered", "command", cmd.String(), "error", m.lastErr)
	}
}

func (m *monitorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Random Value Monitor"))
	b.WriteString("\n")

	value := m.value
	if value == "" {
		value = "-"
	}
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")

	b.WriteString(statusStyle.Render(fmt.Sprintf("State: %s   Rate: %0.1f Hz", strings.ToUpper(m.state.String()), m.rate)))
	b.WriteString("\n")

	b.WriteString(button("[s] Start", m.controls.Start))
	b.WriteString("  ")
	b.WriteString(button("[x] Stop", m.controls.Stop))
	b.WriteString("\n")

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(m.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Producer ➜ Queue ➜ Consumer/UI.  q to quit."))
	b.WriteString("\n")
	return b.String()
}

func button(label string, enabled bool) string {
	if enabled {
		return enabledStyle.Render(label)
	}
	return disabledStyle.Render(label)
}

func newMonitorModel(
	logger *slog.Logger,
	controller *sampler.Controller,
	outputs *sampler.Queue[sampler.RenderMessage],
	renderers []sampler.Renderer,
	pollPeriod time.Duration,
	opts []sampler.Option,
) *monitorModel {
	m := &monitorModel{
		controller: controller,
		pollPeriod: pollPeriod,
		logger:     logger,
		state:      sampler.StateIdle,
		controls:   sampler.ControlsFor(sampler.StateIdle),
	}
	m.consumer = sampler.NewConsumer(outputs, samplerutils.NewMultiRenderer(append(renderers, m)...), opts...)
	return m
}

func runTUI(
	logger *slog.Logger,
	controller *sampler.Controller,
	outputs *sampler.Queue[sampler.RenderMessage],
	renderers []sampler.Renderer,
	pollPeriod time.Duration,
	opts []sampler.Option,
) error {
	m := newMonitorModel(logger, controller, outputs, renderers, pollPeriod, opts)

	_, runErr := tea.NewProgram(m).Run()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	closeErr := controller.Close(ctx)
	for m.consumer.Poll() > 0 {
	}

	var errs *multierror.Error
	if runErr != nil {
		errs = multierror.Append(errs, runErr)
	}
	if closeErr != nil {
		errs = multierror.Append(errs, closeErr)
	}
	return errs.ErrorOrNil()
}
