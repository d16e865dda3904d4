package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sonicmatch/soundcheck/internal/audio"
	"github.com/sonicmatch/soundcheck/internal/cli"
	"github.com/sonicmatch/soundcheck/internal/engine"
	"github.com/sonicmatch/soundcheck/internal/headphones"
	"github.com/sonicmatch/soundcheck/internal/logging"
	"github.com/sonicmatch/soundcheck/internal/profile"
	"github.com/sonicmatch/soundcheck/internal/session"
	"github.com/sonicmatch/soundcheck/internal/ui"
)

var (
	version = "0.0.1"
)

const sampleRate = 44100.0

// CLI defines the command-line interface
type CLI struct {
	Version        bool    `short:"v" help:"Show version information"`
	Mode           string  `short:"m" enum:"ab,slider" default:"ab" help:"Test mode: ab (blind comparisons) or slider (live adjustment)"`
	Track          string  `short:"t" help:"Audio file or URL for slider mode"`
	Assets         string  `short:"a" help:"Directory or base URL holding the A/B variant files"`
	DB             string  `default:"soundcheck.db" type:"path" help:"Session database path"`
	Session        string  `short:"s" help:"Session identifier (generated when omitted)"`
	Brand          string  `help:"Headphone brand, for compensation"`
	Model          string  `help:"Headphone model, for compensation"`
	ListHeadphones bool    `help:"List headphone models with compensation profiles"`
	Report         string  `short:"r" type:"path" help:"Also write a full text report to this path"`
	Volume         float64 `default:"0.8" help:"Master volume, 0 to 1"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("soundcheck"),
		kong.Description("Interactive listening test for sound preference profiling"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if cliArgs.ListHeadphones {
		printHeadphones()
		os.Exit(0)
	}

	if err := run(cliArgs, ctx); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func run(cliArgs *CLI, kctx *kong.Context) error {
	mode := session.Mode(cliArgs.Mode)
	if mode == session.ModeSlider && cliArgs.Track == "" {
		kctx.PrintUsage(false)
		return fmt.Errorf("slider mode needs --track")
	}
	if mode == session.ModeAB && cliArgs.Assets == "" {
		kctx.PrintUsage(false)
		return fmt.Errorf("ab mode needs --assets")
	}

	sessionID := cliArgs.Session
	if sessionID == "" {
		sessionID = time.Now().Format("20060102-150405")
	}

	var headphone string
	var comp = headphones.Lookup(cliArgs.Brand, cliArgs.Model)
	if comp != nil {
		headphone = cliArgs.Brand + " " + cliArgs.Model
	} else if cliArgs.Brand != "" || cliArgs.Model != "" {
		cli.PrintError(fmt.Sprintf("no compensation profile for %q %q, running uncompensated", cliArgs.Brand, cliArgs.Model))
	}

	store, err := session.Open(cliArgs.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	device, err := engine.NewPortAudioDevice()
	if err != nil {
		return fmt.Errorf("opening audio output: %w", err)
	}
	loader := audio.NewLoader(nil)

	cfg := ui.Config{
		SessionID: sessionID,
		Mode:      mode,
		TrackURL:  cliArgs.Track,
		Headphone: headphone,
	}

	var eng *engine.Engine
	var ref *engine.ReferencePlayer
	if mode == session.ModeSlider {
		eng = engine.NewEngine(device, loader, sampleRate)
		if err := eng.Initialize(); err != nil {
			return fmt.Errorf("starting playback engine: %w", err)
		}
		defer eng.Close()
		eng.SetCompensation(comp)
		eng.SetMasterVolume(cliArgs.Volume)
	} else {
		cfg.Pairs = variantPairs(cliArgs.Assets)
		ref = engine.NewReferencePlayer(device, loader, sampleRate)
		if err := ref.Initialize(); err != nil {
			return fmt.Errorf("starting reference player: %w", err)
		}
		defer ref.Close()
	}

	model := ui.NewModel(cfg, eng, ref)
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("ui error: %w", err)
	}

	result, ok := final.(ui.Model)
	if !ok || !result.Done || result.Aborted {
		fmt.Println("Session abandoned, nothing saved.")
		return nil
	}

	rec := session.Record{
		ID:          sessionID,
		Mode:        mode,
		CreatedAt:   time.Now(),
		Headphone:   headphone,
		Analysis:    result.Analysis,
		Comparisons: result.Comparisons,
	}
	if err := store.Save(context.Background(), rec); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	logging.DisplayResults(os.Stdout, rec)
	fmt.Printf("Saved as session %s in %s\n", sessionID, cliArgs.DB)

	if cliArgs.Report != "" {
		if err := logging.GenerateReport(cliArgs.Report, rec); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", cliArgs.Report)
	}

	return nil
}

// variantPairs maps each attribute onto its pre-rendered variant files under
// the assets base, using the <attribute>_balanced.wav / <attribute>_modified.wav
// naming convention.
func variantPairs(base string) map[profile.Attribute]ui.ComparePair {
	pairs := make(map[profile.Attribute]ui.ComparePair, len(profile.Attributes))
	for _, attr := range profile.Attributes {
		pairs[attr] = ui.ComparePair{
			BalancedURL: joinAsset(base, string(attr)+"_balanced.wav"),
			ModifiedURL: joinAsset(base, string(attr)+"_modified.wav"),
		}
	}
	return pairs
}

// joinAsset joins a base URL or directory with a file name.
func joinAsset(base, name string) string {
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return strings.TrimSuffix(base, "/") + "/" + name
	}
	return filepath.Join(base, name)
}

func printHeadphones() {
	models := headphones.Models()
	sort.Slice(models, func(i, j int) bool {
		if models[i].Brand != models[j].Brand {
			return models[i].Brand < models[j].Brand
		}
		return models[i].Model < models[j].Model
	})
	fmt.Println(cli.TitleStyle.Render("Headphone compensation profiles"))
	for _, m := range models {
		fmt.Printf("  %s %s\n", cli.KeyStyle.Render(m.Brand), cli.ValueStyle.Render(m.Model))
	}
}
