package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/lepinkainen/audioconcat/audio"
	"github.com/lepinkainen/audioconcat/mixer"
	"github.com/sirupsen/logrus"
)

func TestMixCmd_Form(t *testing.T) {
	cmd := &MixCmd{
		Files:     []string{"a.wav", "b.wav"},
		Dir:       "/music",
		OutputDir: "out",
		Name:      "mix",
		Format:    "wav",
		Order:     "sequential",
		Delay:     "1.5",
		UseSource: true,
	}

	form := cmd.form()
	if len(form.Files) != 2 || form.Directory != "/music" || form.OutputDir != "out" {
		t.Errorf("Unexpected form inputs: %+v", form)
	}
	if form.Filename != "mix" || form.Format != "wav" || form.Order != "sequential" || form.Delay != "1.5" || !form.UseSource {
		t.Errorf("Unexpected form options: %+v", form)
	}
}

func TestMixCmd_WorkerCount(t *testing.T) {
	local := filepath.Join(t.TempDir(), "a.wav")

	tests := []struct {
		name     string
		workers  int
		req      mixer.Request
		expected int
	}{
		{"default for local files", 0, mixer.Request{Files: []string{local}}, mixer.DefaultWorkers},
		{"negative means auto", -1, mixer.Request{Files: []string{local}}, mixer.DefaultWorkers},
		{"explicit worker count", 8, mixer.Request{Files: []string{local}}, 8},
		{"UNC file", 0, mixer.Request{Files: []string{local, "//nas/music/b.wav"}}, 1},
		{"UNC directory", 0, mixer.Request{Directory: "//nas/music"}, 1},
		{"explicit count wins over network", 3, mixer.Request{Directory: "//nas/music"}, 3},
	}
	if runtime.GOOS != "windows" {
		tests = append(tests, struct {
			name     string
			workers  int
			req      mixer.Request
			expected int
		}{"mounted share", 0, mixer.Request{Directory: "/mnt/share/album"}, 1})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &MixCmd{Workers: tt.workers}
			if got := cmd.workerCount(tt.req); got != tt.expected {
				t.Errorf("Expected %d workers, got %d", tt.expected, got)
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	if err := preflight(mixer.Request{Format: audio.FormatWAV}); err != nil {
		t.Errorf("wav output must not need ffmpeg: %v", err)
	}

	t.Setenv("PATH", t.TempDir())
	for _, f := range []audio.OutputFormat{audio.FormatMP3, audio.FormatFLAC, audio.FormatOGG} {
		if err := preflight(mixer.Request{Format: f}); err == nil {
			t.Errorf("%s output should require ffmpeg", f)
		}
	}
}

func TestMixCmd_RunPlain(t *testing.T) {
	srcDir := t.TempDir()
	a := writeTone(t, srcDir, "a.wav", 2*time.Second, 0.2)
	b := writeTone(t, srcDir, "b.wav", 3*time.Second, 0.4)
	outDir := t.TempDir()

	cmd := &MixCmd{
		Files:     []string{a, b},
		OutputDir: outDir,
		Name:      "joined",
		Format:    "wav",
		Order:     "sequential",
		Delay:     "1",
	}

	log, hook := quietLogger()
	var out bytes.Buffer
	if err := cmd.runPlain(context.Background(), "test", log, &out); err != nil {
		t.Fatalf("runPlain() error = %v", err)
	}

	expected := filepath.Join(outDir, "joined.wav")
	if !strings.Contains(out.String(), "Saved "+expected) {
		t.Errorf("Expected success message for %s, got:\n%s", expected, out.String())
	}

	info, err := audio.Probe(expected)
	if err != nil {
		t.Fatalf("output not readable: %v", err)
	}
	if info.Duration != 6*time.Second {
		t.Errorf("Expected 6s output, got %v", info.Duration)
	}

	if len(hook.AllEntries()) == 0 {
		t.Error("Expected the run to be logged")
	}
	for _, entry := range hook.AllEntries() {
		if _, ok := entry.Data["run"]; !ok {
			t.Errorf("log entry %q is missing the run ID", entry.Message)
		}
	}
}

func TestMixCmd_RunPlainDirectory(t *testing.T) {
	srcDir := t.TempDir()
	writeTone(t, srcDir, "01.wav", time.Second, 0.1)
	writeTone(t, srcDir, "02.wav", time.Second, 0.2)
	if err := os.WriteFile(filepath.Join(srcDir, "cover.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := &MixCmd{
		Dir:       srcDir,
		Name:      "album",
		Format:    "wav",
		Order:     "random",
		Delay:     "0",
		UseSource: true,
		Seed:      42,
	}

	log, _ := quietLogger()
	var out bytes.Buffer
	if err := cmd.runPlain(context.Background(), "test", log, &out); err != nil {
		t.Fatalf("runPlain() error = %v", err)
	}

	info, err := audio.Probe(filepath.Join(srcDir, "album.wav"))
	if err != nil {
		t.Fatalf("output should be written into the source directory: %v", err)
	}
	if info.Duration != 2*time.Second {
		t.Errorf("Expected 2s output, got %v", info.Duration)
	}
}

func TestMixCmd_SeedIsReproducible(t *testing.T) {
	srcDir := t.TempDir()
	var files []string
	for i, name := range []string{"a.wav", "b.wav", "c.wav", "d.wav"} {
		files = append(files, writeTone(t, srcDir, name, 250*time.Millisecond, 0.1*float64(i+1)))
	}

	run := func(name string) []byte {
		cmd := &MixCmd{
			Files:     files,
			OutputDir: t.TempDir(),
			Name:      name,
			Format:    "wav",
			Order:     "random",
			Delay:     "0",
			Seed:      7,
		}
		log, _ := quietLogger()
		if err := cmd.runPlain(context.Background(), "test", log, &bytes.Buffer{}); err != nil {
			t.Fatalf("runPlain() error = %v", err)
		}
		data, err := os.ReadFile(filepath.Join(cmd.OutputDir, name+".wav"))
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	if !bytes.Equal(run("first"), run("second")) {
		t.Error("Same seed should produce the same order")
	}
}

func TestMixCmd_RunPlainErrors(t *testing.T) {
	tests := []struct {
		name  string
		cmd   MixCmd
		check func(t *testing.T, err error)
	}{
		{
			name: "missing name",
			cmd:  MixCmd{Files: []string{"a.wav"}, Format: "wav", Order: "sequential"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, mixer.ErrInputValidation) {
					t.Errorf("Expected validation error, got %v", err)
				}
			},
		},
		{
			name: "bad delay",
			cmd:  MixCmd{Files: []string{"a.wav"}, Name: "mix", Format: "wav", Order: "sequential", Delay: "abc"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, mixer.ErrInputValidation) {
					t.Errorf("Expected validation error, got %v", err)
				}
			},
		},
		{
			name: "empty directory",
			cmd:  MixCmd{Dir: "", Name: "mix", Format: "wav", Order: "sequential"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, audio.ErrNoInput) {
					t.Errorf("Expected no-input error, got %v", err)
				}
			},
		},
		{
			name: "unreadable input",
			cmd:  MixCmd{Name: "mix", Format: "wav", Order: "sequential"},
			check: func(t *testing.T, err error) {
				var decodeErr *audio.DecodeError
				if !errors.As(err, &decodeErr) {
					t.Errorf("Expected decode error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.cmd
			cmd.OutputDir = t.TempDir()
			switch tt.name {
			case "empty directory":
				cmd.Dir = t.TempDir()
			case "unreadable input":
				bad := filepath.Join(t.TempDir(), "bad.wav")
				if err := os.WriteFile(bad, []byte("garbage"), 0644); err != nil {
					t.Fatal(err)
				}
				cmd.Files = []string{bad}
			}

			log, _ := quietLogger()
			err := cmd.runPlain(context.Background(), "test", log, &bytes.Buffer{})
			if err == nil {
				t.Fatal("Expected an error")
			}
			tt.check(t, err)

			if _, statErr := os.Stat(filepath.Join(cmd.OutputDir, "mix.wav")); !os.IsNotExist(statErr) {
				t.Error("No output may be written on failure")
			}
		})
	}
}

func TestMixCmd_RunPlainCanceled(t *testing.T) {
	srcDir := t.TempDir()
	a := writeTone(t, srcDir, "a.wav", time.Second, 0.2)
	outDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := &MixCmd{Files: []string{a}, OutputDir: outDir, Name: "mix", Format: "wav", Order: "sequential"}
	log, _ := quietLogger()
	var out bytes.Buffer
	err := cmd.runPlain(ctx, "test", log, &out)
	if !errors.Is(err, mixer.ErrCanceled) {
		t.Fatalf("Expected ErrCanceled, got %v", err)
	}
	if !strings.Contains(out.String(), "Canceled") {
		t.Errorf("Expected a cancel message, got:\n%s", out.String())
	}
	if _, statErr := os.Stat(filepath.Join(outDir, "mix.wav")); !os.IsNotExist(statErr) {
		t.Error("Canceled run must not write output")
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.log")
		log, closeLog, err := newLogger(true, true, path)
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		log.WithField("run", "abc").Debug("decoded")
		if err := closeLog(); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"run":"abc"`) {
			t.Errorf("Expected JSON log line with run field, got %s", data)
		}
	})

	t.Run("unwritable log file", func(t *testing.T) {
		_, _, err := newLogger(false, false, filepath.Join(t.TempDir(), "missing", "run.log"))
		if err == nil {
			t.Error("Expected an error for a log file in a missing directory")
		}
	})

	t.Run("levels", func(t *testing.T) {
		quiet, _, _ := newLogger(false, true, "")
		if quiet.IsLevelEnabled(logrus.InfoLevel) {
			t.Error("Info logs should be off without --verbose")
		}
		loud, _, _ := newLogger(true, false, "")
		if !loud.IsLevelEnabled(logrus.DebugLevel) {
			t.Error("Debug logs should be on with --verbose")
		}
	})
}

func TestRenderProgress(t *testing.T) {
	events := make(chan mixer.Event, 4)
	events <- mixer.Progress{Percent: 50}
	events <- mixer.Progress{Percent: 100}
	events <- mixer.Completed{OutputPath: "mix.wav"}
	close(events)

	var out bytes.Buffer
	res := renderProgress(events, &out)
	if !res.OK() || res.OutputPath != "mix.wav" {
		t.Errorf("Unexpected result %+v", res)
	}
	if !strings.Contains(out.String(), "Mixing") {
		t.Errorf("Expected progress bar output, got %q", out.String())
	}
}
