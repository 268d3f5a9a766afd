package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lepinkainen/audioconcat/audio"
	"github.com/lepinkainen/audioconcat/mixer"
)

// field is a focusable row of the form
type field int

const (
	fieldFiles field = iota
	fieldDirectory
	fieldOutputDir
	fieldFilename
	fieldDelay
	fieldFormat
	fieldOrder
	fieldUseSource
	fieldStart
	fieldCount
)

// textFields is the number of leading fields backed by a text input
const textFields = int(fieldFormat)

// maxBarWidth caps the progress bar on wide terminals
const maxBarWidth = 60

var fieldLabels = [fieldCount]string{
	fieldFiles:     "Files",
	fieldDirectory: "Directory",
	fieldOutputDir: "Output dir",
	fieldFilename:  "Filename",
	fieldDelay:     "Delay (s)",
	fieldFormat:    "Format",
	fieldOrder:     "Order",
	fieldUseSource: "Use source",
}

// Options configures a FormModel
type Options struct {
	Version string
	// Form prefills the fields
	Form mixer.Form
	// Preflight runs after validation and before a task is created,
	// e.g. to check that ffmpeg is installed
	Preflight func(mixer.Request) error
	// NewTask creates the task for a validated request; mixer.NewTask when nil
	NewTask func(mixer.Request) *mixer.Task
}

// FormModel is the interactive form for configuring and running a mix
type FormModel struct {
	opts Options

	inputs    [textFields]textinput.Model
	format    int
	order     audio.Order
	useSource bool
	focus     field

	task    *mixer.Task
	events  <-chan mixer.Event
	percent float64
	bar     progress.Model

	errMsg string
	status string

	keys keyMap
	help help.Model

	quitting bool
}

// NewFormModel creates the form, prefilled from opts.Form
func NewFormModel(opts Options) FormModel {
	m := FormModel{
		opts: opts,
		bar:  progress.New(progress.WithDefaultGradient()),
		keys: newKeyMap(),
		help: help.New(),
	}
	m.bar.Width = maxBarWidth

	placeholders := [textFields]string{
		fieldFiles:     "a.mp3" + string(filepath.ListSeparator) + "b.wav",
		fieldDirectory: "folder with audio files",
		fieldOutputDir: "current directory",
		fieldFilename:  "output name without extension",
		fieldDelay:     "0",
	}
	values := [textFields]string{
		fieldFiles:     strings.Join(opts.Form.Files, string(filepath.ListSeparator)),
		fieldDirectory: opts.Form.Directory,
		fieldOutputDir: opts.Form.OutputDir,
		fieldFilename:  opts.Form.Filename,
		fieldDelay:     opts.Form.Delay,
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[fieldFiles].Focus()

	if f, err := audio.ParseFormat(opts.Form.Format); err == nil {
		for i, sf := range audio.SupportedFormats {
			if sf == f {
				m.format = i
			}
		}
	}
	if o, err := audio.ParseOrder(opts.Form.Order); err == nil {
		m.order = o
	}
	m.useSource = opts.Form.UseSource

	return m
}

// Form returns the current field values
func (m FormModel) Form() mixer.Form {
	var files []string
	if v := strings.TrimSpace(m.inputs[fieldFiles].Value()); v != "" {
		files = []string{v}
	}
	return mixer.Form{
		Files:     files,
		Directory: m.inputs[fieldDirectory].Value(),
		OutputDir: m.inputs[fieldOutputDir].Value(),
		Filename:  m.inputs[fieldFilename].Value(),
		Format:    string(audio.SupportedFormats[m.format]),
		Order:     m.order.String(),
		Delay:     m.inputs[fieldDelay].Value(),
		UseSource: m.useSource,
	}
}

// Running reports whether a mix is in progress
func (m FormModel) Running() bool {
	return m.task != nil
}

// Err returns the message in the error box, if one is shown
func (m FormModel) Err() string {
	return m.errMsg
}

// Status returns the last success message
func (m FormModel) Status() string {
	return m.status
}

// Drain blocks until a task that was running when the program quit has
// delivered its terminal event
func (m FormModel) Drain() {
	if m.events != nil {
		mixer.Wait(m.events, nil)
	}
}

// Init implements tea.Model
func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		m.help.Width = msg.Width

	case EventMsg:
		return m.handleEvent(msg.Event)

	case EventsClosedMsg:
		// Terminal event already handled; the channel is spent
		m.events = nil
		m.task = nil
	}

	return m, nil
}

func (m FormModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.task != nil {
			m.task.Cancel()
		}
		m.quitting = true
		return m, tea.Quit
	}

	// The error box is modal
	if m.errMsg != "" {
		m.errMsg = ""
		return m, nil
	}

	// The form is locked while a mix runs
	if m.task != nil {
		if key.Matches(msg, m.keys.Cancel) {
			m.task.Cancel()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % fieldCount)

	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)

	case key.Matches(msg, m.keys.Start):
		if m.focus == fieldStart {
			return m.submit()
		}
		return m, m.setFocus(m.focus + 1)

	case m.focus >= fieldFormat && key.Matches(msg, m.keys.Change):
		m.change(msg.String() == "left")
		return m, nil
	}

	if int(m.focus) < textFields {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// change cycles the option under the cursor
func (m *FormModel) change(back bool) {
	switch m.focus {
	case fieldFormat:
		n := len(audio.SupportedFormats)
		if back {
			m.format = (m.format + n - 1) % n
		} else {
			m.format = (m.format + 1) % n
		}
	case fieldOrder:
		if m.order == audio.Random {
			m.order = audio.Sequential
		} else {
			m.order = audio.Random
		}
	case fieldUseSource:
		m.useSource = !m.useSource
	}
}

func (m *FormModel) setFocus(f field) tea.Cmd {
	if int(m.focus) < textFields {
		m.inputs[m.focus].Blur()
	}
	m.focus = f
	if int(f) < textFields {
		return m.inputs[f].Focus()
	}
	return nil
}

// submit validates the form and starts a task
func (m FormModel) submit() (tea.Model, tea.Cmd) {
	req, err := m.Form().Request()
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	if m.opts.Preflight != nil {
		if err := m.opts.Preflight(req); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
	}

	newTask := m.opts.NewTask
	if newTask == nil {
		newTask = func(r mixer.Request) *mixer.Task { return mixer.NewTask(r) }
	}

	m.task = newTask(req)
	m.events = m.task.Start(context.Background())
	m.percent = 0
	m.status = ""
	return m, waitForEvent(m.events)
}

func (m FormModel) handleEvent(ev mixer.Event) (tea.Model, tea.Cmd) {
	switch e := ev.(type) {
	case mixer.Progress:
		m.percent = float64(e.Percent) / 100
		return m, waitForEvent(m.events)

	case mixer.Completed:
		m.percent = 1
		m.status = fmt.Sprintf("✅ Saved %s", e.OutputPath)

	case mixer.Failed:
		m.percent = 0
		m.errMsg = e.Err.Error()

	case mixer.Canceled:
		m.percent = 0
	}

	// Terminal event: the channel closes next
	m.task = nil
	return m, waitForEvent(m.events)
}

// View implements tea.Model
func (m FormModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("audioconcat %s", m.opts.Version)))
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(ErrorBoxStyle.Render(ErrorStyle.Render("❌ Error") + "\n\n" + m.errMsg + "\n\n" + BlurredStyle.Render("press any key")))
		b.WriteString("\n")
		return b.String()
	}

	for i := range m.inputs {
		b.WriteString(m.renderRow(field(i), m.inputs[i].View()))
		if field(i) == fieldFiles {
			b.WriteString(m.renderFileSummary())
		}
	}

	b.WriteString(m.renderRow(fieldFormat, m.renderFormats()))
	b.WriteString(m.renderRow(fieldOrder, m.renderOrder()))
	b.WriteString(m.renderRow(fieldUseSource, checkbox(m.useSource)+" write output next to the input files"))

	b.WriteString("\n")
	b.WriteString(m.renderStart())
	b.WriteString("\n\n")

	if m.task != nil || m.percent > 0 {
		b.WriteString(m.bar.ViewAs(m.percent))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(SuccessStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m FormModel) renderRow(f field, value string) string {
	label := LabelStyle.Render(fieldLabels[f])
	cursor := "  "
	if f == m.focus && m.task == nil {
		label = FocusedStyle.Render(LabelStyle.Render(fieldLabels[f]))
		cursor = FocusedStyle.Render("> ")
	}
	return cursor + label + value + "\n"
}

func (m FormModel) renderFileSummary() string {
	files := mixer.SplitFiles(m.inputs[fieldFiles].Value())
	if len(files) < 2 {
		return ""
	}
	return InfoStyle.Render(fmt.Sprintf("%16s%d files: %s", "", len(files), strings.Join(shortenPaths(files), ", "))) + "\n"
}

func (m FormModel) renderFormats() string {
	parts := make([]string, len(audio.SupportedFormats))
	for i, f := range audio.SupportedFormats {
		if i == m.format {
			parts[i] = FocusedStyle.Render("[" + string(f) + "]")
		} else {
			parts[i] = BlurredStyle.Render(" " + string(f) + " ")
		}
	}
	return strings.Join(parts, " ")
}

func (m FormModel) renderOrder() string {
	var parts []string
	for _, o := range []audio.Order{audio.Sequential, audio.Random} {
		if o == m.order {
			parts = append(parts, FocusedStyle.Render("["+o.String()+"]"))
		} else {
			parts = append(parts, BlurredStyle.Render(" "+o.String()+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (m FormModel) renderStart() string {
	switch {
	case m.task != nil:
		return ProcessingStyle.Render("  🔄 Mixing... (esc to cancel)")
	case m.focus == fieldStart:
		return FocusedStyle.Render("> [ Start ]")
	default:
		return BlurredStyle.Render("  [ Start ]")
	}
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
