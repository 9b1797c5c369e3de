package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"forecast-viewer/app"
	"forecast-viewer/datasource"
	"forecast-viewer/forecastview"
	"forecast-viewer/session"
)

// options holds the flags shared by every command
type options struct {
	configFile string
	timezone   string
	colorMode  string
	verbose    bool
	day        int
	all        bool
	port       int
}

// loadFunc fetches a forecast into the session
type loadFunc func(ctx context.Context, sess *session.Session) (forecastview.ViewState, error)

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "forecast",
		Short: "Show a 5-day weather forecast one day at a time",
		Long: `forecast fetches the 5-day / 3-hour forecast for a city, a coordinate pair
or the configured current location and prints it grouped by calendar day.

Example usage:
  forecast city London            # first day of the London forecast
  forecast city "New York" --day 2
  forecast coords 35.68 139.69 --all
  forecast current
  forecast serve --port 8080      # HTTP API`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.configFile, "config", "config.json", "path to configuration file")
	root.PersistentFlags().StringVar(&opts.timezone, "timezone", "", "IANA time zone used to group days (default from config or host)")
	root.PersistentFlags().StringVar(&opts.colorMode, "color", "auto", "color output: auto, always, or never")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().IntVar(&opts.day, "day", 0, "zero-based index of the day to show")
	root.PersistentFlags().BoolVar(&opts.all, "all", false, "show every day")

	root.AddCommand(
		&cobra.Command{
			Use:   "city <name>",
			Short: "Forecast for a city name",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				city := strings.Join(args, " ")
				return run(cmd, opts, func(ctx context.Context, sess *session.Session) (forecastview.ViewState, error) {
					return sess.SearchCity(ctx, city)
				})
			},
		},
		&cobra.Command{
			Use:   "coords <lat> <lon>",
			Short: "Forecast for a coordinate pair",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				lat, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("invalid latitude %q: %w", args[0], err)
				}
				lon, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("invalid longitude %q: %w", args[1], err)
				}
				return run(cmd, opts, func(ctx context.Context, sess *session.Session) (forecastview.ViewState, error) {
					return sess.SelectCoordinates(ctx, lat, lon)
				})
			},
		},
		&cobra.Command{
			Use:   "current",
			Short: "Forecast for the configured current location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, opts, func(ctx context.Context, sess *session.Session) (forecastview.ViewState, error) {
					return sess.UseCurrentLocation(ctx)
				})
			},
		},
		newServeCmd(opts),
	)

	return root
}

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the forecast HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if opts.verbose {
				level = "debug"
			}
			logger := app.NewLogger(cmd.ErrOrStderr(), "json", level)

			config, err := loadConfig(opts)
			if err != nil {
				return err
			}
			application, err := app.New(config, logger)
			if err != nil {
				return err
			}
			return application.Serve(cmd.Context(), opts.port, logger)
		},
	}
	cmd.Flags().IntVar(&opts.port, "port", 8080, "port to run the server on")
	return cmd
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(opts *options) (*datasource.Config, error) {
	config, err := app.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.timezone != "" {
		config.Timezone = opts.timezone
	}
	return config, nil
}

// run builds the application, loads a forecast and prints the requested days
func run(cmd *cobra.Command, opts *options, load loadFunc) error {
	useColors, err := resolveColors(opts.colorMode)
	if err != nil {
		return err
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := app.NewLogger(cmd.ErrOrStderr(), "text", level)

	config, err := loadConfig(opts)
	if err != nil {
		return err
	}
	// one request per invocation
	config.RateLimit.Enabled = false

	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	sess := application.Session

	state, err := load(cmd.Context(), sess)
	if err != nil {
		return err
	}

	p := &printer{out: cmd.OutOrStdout(), useColors: useColors}
	format := sess.Formatter()

	if opts.all {
		for {
			p.Day(state.Location, state, format)
			var moved bool
			if state, moved = sess.Next(); !moved {
				return nil
			}
			fmt.Fprintln(p.out)
		}
	}

	if opts.day != 0 {
		var moved bool
		if state, moved = sess.SelectDay(opts.day); !moved {
			return fmt.Errorf("day %d out of range: forecast has %d days", opts.day, state.DayCount)
		}
	}
	p.Day(state.Location, state, format)
	return nil
}
