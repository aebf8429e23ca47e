package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/console"
	"github.com/fwojciec/linkcrawl/crawl"
	lchttp "github.com/fwojciec/linkcrawl/http"
	"github.com/fwojciec/linkcrawl/rod"
	lcslog "github.com/fwojciec/linkcrawl/slog"
)

// seedPrompt is shown when no URL is given on the command line.
const seedPrompt = "Enter the URL of the starting webpage: "

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Services for end-to-end testing. Nil fields are built from flags.
	Browser linkcrawl.Browser
	Checker linkcrawl.StatusChecker
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run parses args, reads the seed URL and crawls it. The returned error is
// non-nil only for setup failures: bad flags, a missing seed or a browser
// that cannot be launched. Broken links, failed pages and an unusable seed
// are reported, not returned.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli := &CLI{}
	exited := false
	parser, err := kong.New(cli,
		kong.Name("linkcrawl"),
		kong.Description("Crawl a site from a seed URL and report the HTTP status of every link found"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	_, err = parser.Parse(args)
	if exited {
		// Help was printed.
		return nil
	}
	if err != nil {
		return err
	}

	seed := cli.URL
	if seed == "" {
		if seed, err = promptSeed(stdin, stdout); err != nil {
			return err
		}
	}

	session, err := crawl.NewSession(seed)
	if err != nil && strings.TrimSpace(seed) != "" && linkcrawl.ErrorCode(err) == linkcrawl.EINVALID {
		// An unusable seed is a page that failed to load, not a setup error.
		reporter := console.NewReporter(stdout, stderr, colorOption(cli, stdout))
		reporter.PageFailed(seed, err)
		reporter.Finished(linkcrawl.Summary{Failed: 1})
		return nil
	}
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cli.Verbose)
	sessionLogger := logger.With("session", session.ID)

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}

	deps.Browser = m.Browser
	if deps.Browser == nil {
		browser, err := newBrowser(cli)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or use --no-browser")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		deps.Browser = browser
	}
	defer deps.Browser.Close()

	page, err := deps.Browser.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	deps.Page = lcslog.NewLoggingPage(page, sessionLogger)

	checker := m.Checker
	if checker == nil {
		checker = lchttp.NewStatusChecker(lchttp.WithTimeout(cli.CheckTimeout))
	}
	deps.Checker = lcslog.NewLoggingChecker(checker, sessionLogger)

	if cli.Sitemap {
		deps.Sitemaps = lcslog.NewLoggingSitemapService(lchttp.NewSitemapService(&http.Client{Timeout: cli.NavTimeout}), sessionLogger)
	}

	deps.Reporter = console.NewReporter(stdout, stderr, colorOption(cli, stdout))

	cmd := &CrawlCmd{
		Session:     session,
		Concurrency: cli.Concurrency,
		Retries:     cli.Retries,
		MaxPages:    cli.MaxPages,
		CheckOnce:   cli.CheckOnce,
	}
	return cmd.Run(deps)
}

// promptSeed asks for the seed URL on stdout and reads one line from stdin.
func promptSeed(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, seedPrompt)

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", linkcrawl.Errorf(linkcrawl.EINVALID, "no seed URL provided")
	}
	return strings.TrimSpace(line), nil
}

// newLogger logs to stderr at warn level, or debug level when verbose.
func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// newBrowser builds the page loader selected by the flags.
func newBrowser(cli *CLI) (linkcrawl.Browser, error) {
	if cli.NoBrowser {
		return lchttp.NewBrowser(lchttp.WithNavigationTimeout(cli.NavTimeout)), nil
	}
	return rod.Launch(rod.WithNavigationTimeout(cli.NavTimeout))
}

// colorOption disables color when asked to or when stdout is not a terminal.
func colorOption(cli *CLI, stdout io.Writer) console.Option {
	if cli.NoColor {
		return console.WithColor(false)
	}
	if f, ok := stdout.(*os.File); ok && f == os.Stdout {
		// Let fatih/color detect the terminal.
		return func(*console.Reporter) {}
	}
	return console.WithColor(false)
}
