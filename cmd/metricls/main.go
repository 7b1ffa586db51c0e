package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"metricls/internal/app"
	"metricls/internal/config"
	"metricls/internal/ls"

	"github.com/spf13/cobra"
)

// controllerAPI is the part of app.App the commands use.
type controllerAPI interface {
	Ls(context.Context, app.LsParams) (ls.Result, error)
	Browse(context.Context, app.BrowseParams) ([]app.SetView, error)
	Status() (app.DaemonStatus, error)
	Ping(context.Context, time.Duration) (string, error)
}

var controllerFactory = func(opts app.Options) controllerAPI {
	return app.New(opts)
}

var (
	configPath  string
	host        string
	port        uint16
	transport   string
	waitSeconds int
	verbose     int
	long        bool
	debug       bool
	progress    bool
)

var rootCmd = &cobra.Command{
	Use:   "metricls [flags] [set ...]",
	Short: "metricls: list the metric sets of a server",
	Long: `metricls queries a metric set server for the sets it publishes.
Without -l or -v only the set names are printed. With -l the values of each
set are printed, with -v its metadata. Naming sets restricts the output to
those sets and skips the directory request.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := lsParams(cmd, args)
		if err != nil {
			return err
		}
		controller := controllerFactory(app.Options{ConfigPath: configPath, Stdout: cmd.OutOrStdout()})
		_, err = controller.Ls(cmd.Context(), params)
		return err
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to JSON config file")
	flags.StringVarP(&host, "host", "h", config.DefaultHost, "Host name or IP address of the server")
	flags.Uint16VarP(&port, "port", "p", config.DefaultPort, "Port the server listens on")
	flags.StringVarP(&transport, "xprt", "x", config.DefaultTransport, "Transport type (sock, local, rdma)")
	flags.IntVarP(&waitSeconds, "wait", "w", 10, "Seconds to wait for the directory")
	flags.BoolVar(&debug, "debug", false, "Log transport activity to stderr")
	// -h belongs to --host, so help is long-form only.
	flags.Bool("help", false, "Help for metricls")

	rootCmd.Flags().BoolVarP(&long, "long", "l", false, "Print the values of each set")
	rootCmd.Flags().CountVarP(&verbose, "verbose", "v", "Print set metadata; repeat to echo connection parameters")
	rootCmd.Flags().BoolVar(&progress, "progress", false, "Show a spinner while waiting for the directory")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
}

// endpoint collects the connection flags that were given explicitly; the
// rest defer to the configuration.
func endpoint(cmd *cobra.Command) (app.BrowseParams, error) {
	var p app.BrowseParams
	flags := cmd.Flags()
	if flags.Changed("host") {
		p.Host = host
	}
	if flags.Changed("port") {
		p.Port = port
	}
	if flags.Changed("xprt") {
		p.Transport = transport
	}
	if flags.Changed("wait") {
		if waitSeconds <= 0 {
			return p, usageError{errors.New("wait must be greater than 0 seconds")}
		}
		p.Wait = time.Duration(waitSeconds) * time.Second
	}
	return p, nil
}

func lsParams(cmd *cobra.Command, args []string) (app.LsParams, error) {
	ep, err := endpoint(cmd)
	if err != nil {
		return app.LsParams{}, err
	}
	params := app.LsParams{
		Host:      ep.Host,
		Port:      ep.Port,
		Transport: ep.Transport,
		Wait:      ep.Wait,
		Verbose:   verbose,
		Long:      long,
		Sets:      args,
		Debug:     debug,
	}
	if progress {
		params.Progress = newProgress(os.Stderr)
	}
	return params, nil
}

// usageError marks command-line mistakes that warrant printing the usage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func isUsage(err error) bool {
	var ue usageError
	return errors.As(err, &ue) || ls.IsUsage(err)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return 1
}

func report(w io.Writer, cmd *cobra.Command, err error) int {
	fmt.Fprintln(w, err)
	if isUsage(err) {
		fmt.Fprint(w, cmd.UsageString())
	}
	return exitCode(err)
}

func main() {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		os.Exit(report(os.Stderr, cmd, err))
	}
}
