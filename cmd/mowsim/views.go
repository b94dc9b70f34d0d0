package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mowsim/internal/export"
	"github.com/san-kum/mowsim/internal/sim"
	"github.com/san-kum/mowsim/internal/storage"
	"github.com/san-kum/mowsim/internal/viz"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tTICKS\tDT\tLENGTH\tINTEG\tCTRL")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.4fs\t%s\t%s\t%s\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Ticks,
					run.Dt,
					run.SimLength,
					run.Integrator,
					run.Controller,
				)
			}
			return w.Flush()
		},
	}
}

func loadRun(runID string) (*storage.RunMetadata, *sim.Output[json.RawMessage], error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	out, err := st.LoadOutput(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, out, nil
}

func showCmd() *cobra.Command {
	var tick int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and the debug messages of one tick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, out, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return storage.WriteJSON(os.Stdout, meta, true)
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("source: %s\n", meta.Source)
			fmt.Printf("controller: %s  integrator: %s\n", meta.Controller, meta.Integrator)
			fmt.Printf("length: %s  dt: %.4fs  ticks: %d\n", meta.SimLength, meta.Dt, meta.Ticks)
			fmt.Printf("robot: wheel distance %.3fm, wheel radius %.3fm, max motor speed %.2f rad/s, blade radius %.3fm\n",
				meta.Physical.WheelDistance, meta.Physical.WheelRadius, meta.Physical.MaxMotorSpeed, meta.Physical.BladeRadius)
			fmt.Printf("final pose: (%.3f, %.3f) heading %.3f rad\n", meta.Final.X, meta.Final.Y, meta.Final.Theta)
			printMetrics(os.Stdout, meta.Metrics)

			if tick < 0 {
				tick += len(out.States)
			}
			if tick < 0 || tick >= len(out.States) {
				return fmt.Errorf("tick %d out of range [0, %d]", tick, out.Ticks())
			}
			rec := out.States[tick]
			fmt.Printf("\ntick %d:\n", tick)
			for _, msg := range rec.Debug.Messages {
				fmt.Printf("  %s\n", msg)
			}
			for _, r := range rec.Debug.Renderables {
				fmt.Printf("  draw %s\n", r)
			}
			if len(rec.Control) > 0 {
				fmt.Printf("  control %s\n", rec.Control)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&tick, "tick", -1, "record to show; negative counts from the end")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print metadata as JSON")
	return cmd
}

func plotCmd() *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot pose and motor power against time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, out, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if len(out.States) < 2 {
				return fmt.Errorf("no data to plot")
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("samples: %d\n\n", len(out.States))

			n := len(out.States)
			xs, ys, thetas := make([]float64, n), make([]float64, n), make([]float64, n)
			left, right := make([]float64, n), make([]float64, n)
			for i, r := range out.States {
				xs[i], ys[i], thetas[i] = r.RobotX, r.RobotY, r.RobotTheta
				left[i], right[i] = r.MotorLeft, r.MotorRight
			}

			for _, series := range []struct {
				caption string
				data    []float64
			}{
				{"x (m)", xs},
				{"y (m)", ys},
				{"heading (rad)", thetas},
			} {
				fmt.Println(asciigraph.Plot(series.data,
					asciigraph.Height(height),
					asciigraph.Width(width),
					asciigraph.Caption(series.caption),
				))
				fmt.Println()
			}

			fmt.Println(asciigraph.PlotMany([][]float64{left, right},
				asciigraph.Height(height),
				asciigraph.Width(width),
				asciigraph.SeriesColors(asciigraph.Green, asciigraph.Blue),
				asciigraph.Caption("motor power (left green, right blue)"),
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 10, "plot height")
	return cmd
}

func replayCmd() *cobra.Command {
	var theme, gifPath string
	var every int
	cmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "step through a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, out, err := loadRun(args[0])
			if err != nil {
				return err
			}
			m := viz.NewReplay(meta.Name, out).WithTheme(theme)

			if gifPath != "" {
				if err := viz.RecordAll(m, viz.NewRecorder(gifPath, 0), every); err != nil {
					return err
				}
				logger.Infow("wrote gif", "path", gifPath)
				return nil
			}
			return viz.RunReplay(m)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "lawn", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	cmd.Flags().StringVar(&gifPath, "gif", "", "render an animated gif instead of opening the viewer")
	cmd.Flags().IntVar(&every, "every", 5, "keep every n-th tick in the gif")
	return cmd
}

func renderCmd() *cobra.Command {
	opts := export.DefaultOptions()
	var outFile string
	cmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a saved run to SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, out, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if outFile == "" {
				outFile = args[0] + ".svg"
			}

			f, err := os.Create(outFile)
			if err != nil {
				return err
			}
			switch strings.ToLower(filepath.Ext(outFile)) {
			case ".png":
				err = export.WritePNG(f, out, opts)
			case ".svg":
				err = export.WriteSVG(f, out, opts)
			default:
				err = fmt.Errorf("unsupported format %q (want .svg or .png)", filepath.Ext(outFile))
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(outFile)
				return err
			}
			fmt.Printf("wrote %s\n", outFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file, .svg or .png (default <run_id>.svg)")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "image width")
	cmd.Flags().IntVar(&opts.Height, "height", opts.Height, "image height")
	cmd.Flags().IntVar(&opts.Frame, "frame", opts.Frame, "record whose renderables are drawn; negative counts from the end")
	cmd.Flags().BoolVar(&opts.Grid, "grid", opts.Grid, "draw a 1m grid")
	return cmd
}

func exportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the pose trace as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, out, err := loadRun(args[0])
			if err != nil {
				return err
			}
			if len(out.States) == 0 {
				return fmt.Errorf("no data to export")
			}
			return storage.WriteCSV(os.Stdout, out)
		},
	}
}
