// Command rack-render renders the scenes of a YAML scene file to WAV. Each
// scene plays a note list on a polyphonic synth or drum preset through an
// effect chain.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cwbudde/algo-rack/internal/wavio"
	"github.com/cwbudde/algo-rack/preset"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "rack-render error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rack-render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scenePath := fs.String("scene", "", "Scene YAML file")
	outDir := fs.String("out-dir", ".", "Directory for rendered WAV files")
	jobsRaw := fs.String("jobs", "auto", "Concurrent scenes: integer >= 1 or 'auto'")
	sampleRate := fs.Int("sample-rate", 0, "Override the scene file sample rate in Hz")
	only := fs.String("only", "", "Comma-separated scene names to render (default all)")
	list := fs.Bool("list", false, "List synths, drums and effects and exit")
	meter := fs.Bool("meter", false, "Log per-effect level and CPU meters after each scene")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(stderr)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *list {
		return printCatalog(stdout, newRenderer(defaultSampleRate, *outDir, log))
	}
	if *scenePath == "" {
		return fmt.Errorf("-scene is required")
	}
	jobs, err := parseJobs(*jobsRaw)
	if err != nil {
		return fmt.Errorf("invalid -jobs: %w", err)
	}

	sf, err := loadSceneFile(*scenePath)
	if err != nil {
		return err
	}
	if *sampleRate > 0 {
		sf.SampleRate = *sampleRate
		if err := sf.validate(); err != nil {
			return err
		}
	}
	scenes, err := selectScenes(sf.Scenes, *only)
	if err != nil {
		return err
	}

	r := newRenderer(sf.SampleRate, *outDir, log)
	r.metering = *meter
	if err := r.registerImpulses(sf.Impulses); err != nil {
		return err
	}
	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.progress = newProgress(stderr, scenes)
		log.SetLevel(logrus.WarnLevel)
	}

	log.WithFields(logrus.Fields{
		"function":    "run",
		"scenes":      len(scenes),
		"jobs":        jobs,
		"sample_rate": sf.SampleRate,
	}).Info("Rendering scenes")

	results := make([]result, len(scenes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range scenes {
		g.Go(func() error {
			res, err := r.render(gctx, &scenes[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	err = g.Wait()
	r.progress.finish()
	if err != nil {
		return err
	}

	for _, res := range results {
		fmt.Fprintf(stdout, "%s: wrote %s (%d frames, peak %.1f dBFS, rms %.4f)\n",
			res.Name, res.Path, res.Frames, wavio.PeakDBFS(res.Peak), res.RMS)
	}
	return nil
}

// parseJobs accepts an integer >= 1 or "auto" (one job per CPU).
func parseJobs(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use integer >= 1 or 'auto')")
	}
	if v == "auto" {
		return runtime.NumCPU(), nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q (use integer >= 1 or 'auto')", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d (must be >= 1 or 'auto')", n)
	}
	return n, nil
}

func selectScenes(all []scene, only string) ([]scene, error) {
	if strings.TrimSpace(only) == "" {
		return all, nil
	}
	byName := make(map[string]scene, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	var out []scene
	for _, name := range strings.Split(only, ",") {
		name = strings.TrimSpace(name)
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown scene %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}

func printCatalog(w io.Writer, r *renderer) error {
	fmt.Fprintln(w, "synths:")
	for _, m := range r.synths.List() {
		fmt.Fprintf(w, "  %-16s %s\n", m.Name, m.Description)
	}
	fmt.Fprintln(w, "drums:")
	for _, p := range preset.DrumBank().Presets {
		fmt.Fprintf(w, "  %-16s %s\n", p.Name, p.Description)
	}
	fmt.Fprintln(w, "effects:")
	for _, m := range r.effects.List() {
		fmt.Fprintf(w, "  %-16s [%s] %s\n", m.Name, m.Category, m.Description)
	}
	fmt.Fprintln(w, "effect presets:")
	for _, bank := range []*preset.EffectBank{preset.MasteringBank(), preset.MixingBank()} {
		for _, p := range bank.Presets {
			fmt.Fprintf(w, "  %-18s %s\n", p.Name, p.Description)
		}
	}
	return nil
}
