package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lepinkainen/audioconcat/audio"
	"github.com/lepinkainen/audioconcat/mixer"
	"github.com/lepinkainen/audioconcat/types"
	"github.com/lepinkainen/audioconcat/ui"
	"github.com/lepinkainen/audioconcat/utils"
	"github.com/sirupsen/logrus"
)

// MixCmd joins audio files into a single output file. Without --no-tui the
// flags only prefill the interactive form.
type MixCmd struct {
	Files     []string `arg:"" optional:"" name:"files" help:"Audio files to join, in playback order" type:"path"`
	Dir       string   `short:"d" help:"Join every supported audio file in this directory" type:"path"`
	OutputDir string   `short:"o" name:"output-dir" help:"Directory for the output file (default: current directory)" type:"path"`
	Name      string   `short:"n" help:"Output file name without extension"`
	Format    string   `short:"f" help:"Output format" default:"mp3" enum:"mp3,wav,flac,ogg"`
	Order     string   `help:"Playback order" default:"random" enum:"sequential,random"`
	Delay     string   `help:"Seconds of silence between clips" default:"0"`
	UseSource bool     `name:"use-source" help:"Write the output into the directory the inputs come from"`
	Workers   int      `help:"Number of parallel decoders (0 = auto)" default:"0"`
	Seed      uint64   `help:"Seed for random order, for reproducible shuffles (0 = random)" default:"0"`
	NoTUI     bool     `name:"no-tui" help:"Run without the interactive form"`
	Verbose   bool     `short:"v" help:"Log run details"`
	LogFile   string   `name:"log-file" help:"Append logs to this file" type:"path"`
}

// Run starts the interactive form, or mixes straight away with --no-tui
func (cmd *MixCmd) Run(appCtx *types.AppContext) error {
	version := appCtx.VersionOrDefault()

	log, closeLog, err := newLogger(cmd.Verbose, !cmd.NoTUI, cmd.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	if !cmd.NoTUI {
		return cmd.runTUI(version, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cmd.runPlain(ctx, version, log, appCtx.Writer())
}

// form maps the flags onto the form fields, so both modes share validation
func (cmd *MixCmd) form() mixer.Form {
	return mixer.Form{
		Files:     cmd.Files,
		Directory: cmd.Dir,
		OutputDir: cmd.OutputDir,
		Filename:  cmd.Name,
		Format:    cmd.Format,
		Order:     cmd.Order,
		Delay:     cmd.Delay,
		UseSource: cmd.UseSource,
	}
}

// workerCount picks the decode pool size for req
func (cmd *MixCmd) workerCount(req mixer.Request) int {
	if cmd.Workers > 0 {
		return cmd.Workers
	}

	// Parallel reads thrash network mounts
	if utils.AnyNetworkDrive(append([]string{req.Directory}, req.Files...)...) {
		return 1
	}
	return mixer.DefaultWorkers
}

func (cmd *MixCmd) taskOptions(req mixer.Request, log logrus.FieldLogger) []mixer.Option {
	opts := []mixer.Option{
		mixer.WithWorkers(cmd.workerCount(req)),
		mixer.WithLogger(log),
	}
	if cmd.Seed != 0 {
		opts = append(opts, mixer.WithRand(rand.New(rand.NewPCG(cmd.Seed, cmd.Seed))))
	}
	return opts
}

// preflight checks external tools the request needs before a task starts
func preflight(req mixer.Request) error {
	if audio.NeedsTranscode(req.Format) {
		return utils.ValidateFFmpegDependencies()
	}
	return nil
}

func (cmd *MixCmd) runTUI(version string, log logrus.FieldLogger) error {
	model := ui.NewFormModel(ui.Options{
		Version:   version,
		Form:      cmd.form(),
		Preflight: preflight,
		NewTask: func(req mixer.Request) *mixer.Task {
			return mixer.NewTask(req, cmd.taskOptions(req, log)...)
		},
	})

	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Wait for a run that was still going when the form closed
	if m, ok := final.(ui.FormModel); ok {
		m.Drain()
	}
	return nil
}

func (cmd *MixCmd) runPlain(ctx context.Context, version string, log logrus.FieldLogger, out io.Writer) error {
	req, err := cmd.form().Request()
	if err != nil {
		return err
	}
	if err := preflight(req); err != nil {
		return err
	}

	fmt.Fprintln(out, ui.HeaderStyle.Render(fmt.Sprintf("audioconcat %s", version)))
	source := fmt.Sprintf("%d files", len(req.Files))
	if len(req.Files) == 0 {
		source = req.Directory
	}
	fmt.Fprintln(out, ui.ProcessingStyle.Render(fmt.Sprintf("Joining %s (%s order, %s gap) into %s", source, req.Order, formatDuration(req.Delay), req.OutputPath())))

	task := mixer.NewTask(req, cmd.taskOptions(req, log)...)
	res := renderProgress(task.Start(ctx), out)

	switch {
	case errors.Is(res.Err, mixer.ErrCanceled):
		fmt.Fprintf(out, "%s\n", ui.InfoStyle.Render("⏹️  Canceled, nothing was written"))
		return res.Err
	case res.Err != nil:
		var relocateErr *mixer.RelocateError
		if errors.As(res.Err, &relocateErr) {
			fmt.Fprintf(out, "%s\n", ui.InfoStyle.Render(fmt.Sprintf("The mix is still available at %s", relocateErr.From)))
		}
		return fmt.Errorf("mix failed: %w", res.Err)
	}

	fmt.Fprintf(out, "%s\n", ui.SuccessStyle.Render(fmt.Sprintf("✅ Saved %s", res.OutputPath)))
	return nil
}
