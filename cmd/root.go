package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"movix-cli/config"
	"movix-cli/tui"
)

const appName = "movix-cli"

type rootOptions struct {
	apiURL   string
	debug    bool
	noBlink  bool
	openPath string

	version string
	commit  string

	app *app
}

// Execute runs the command tree and returns the process exit code.
func Execute(version, commit string) int {
	root, opts := newRootCmd(version, commit)
	if err := opts.execute(root); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// execute runs root and closes the app afterwards, also when the command
// failed.
func (o *rootOptions) execute(root *cobra.Command) (err error) {
	defer func() {
		err = errors.Join(err, o.app.Close())
	}()
	return root.Execute()
}

func newRootCmd(version, commit string) (*cobra.Command, *rootOptions) {
	opts := &rootOptions{version: version, commit: commit}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Movix movie tickets from the terminal",
		Long:          `Browse screenings, book seats and manage the catalogue of a Movix backend. Run without arguments for the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}
			return opts.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (overrides "+config.EnvAPIURL+")")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log at debug level")
	root.Flags().BoolVar(&opts.noBlink, "no-blink", false, "keep the text cursor steady")
	root.Flags().StringVar(&opts.openPath, "open", "", "start the interface at this path, e.g. /movies/3")

	root.AddCommand(
		newMoviesCmd(opts),
		newBookingsCmd(opts),
		newBookCmd(opts),
		newCancelCmd(opts),
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newDevServerCmd(opts),
		newVersionCmd(opts),
	)
	return root, opts
}

func (o *rootOptions) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if url := strings.TrimSpace(o.apiURL); url != "" {
		cfg.APIURL = strings.TrimRight(url, "/")
	}
	a, err := newApp(cfg, o.debug, o.version)
	if err != nil {
		return err
	}
	o.app = a
	return nil
}

// skipsApp reports commands that need neither storage nor an API client.
func skipsApp(cmd *cobra.Command) bool {
	return cmd.Annotations["app"] == "none"
}

func runTUI(o *rootOptions) error {
	opts := tui.Options{
		Logger:  o.app.logger,
		APIURL:  o.app.client.BaseURL(),
		Version: o.version,
		Path:    o.openPath,
	}
	if o.noBlink {
		opts.CursorMode = cursor.CursorStatic
	}
	model := tui.New(o.app.store, opts)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

func printVersion(out io.Writer, version, commit string) {
	fmt.Fprintf(out, "%s %s", appName, version)
	if commit != "none" && commit != "" {
		fmt.Fprintf(out, " (%s)", commit)
	}
	fmt.Fprintln(out)
}

func newVersionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number of movix-cli",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"app": "none"},
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout(), o.version, o.commit)
		},
	}
}
