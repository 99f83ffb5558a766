package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/q939055502/jy-syzn"
	"github.com/q939055502/jy-syzn/internal/fileutil"
	"github.com/q939055502/jy-syzn/internal/hints"
)

// checkLevel grades one diagnostic.
type checkLevel string

const (
	checkOK   checkLevel = "ok"
	checkWarn checkLevel = "warn"
	checkFail checkLevel = "error"
)

// Check groups, in report order.
const (
	groupFont    = "Raster font"
	groupBrowser = "Browser (snapshots only)"
	groupEnv     = "Environment"
	groupSystem  = "System"
)

var checkGroups = []string{groupFont, groupBrowser, groupEnv, groupSystem}

// check is one diagnostic line.
type check struct {
	Group  string     `json:"group"`
	Name   string     `json:"name"`
	Level  checkLevel `json:"level"`
	Detail string     `json:"detail"`
	Hint   string     `json:"hint,omitempty"`
}

// doctorReport is the outcome of all checks.
type doctorReport struct {
	Status string  `json:"status"` // "ready", "warnings", "errors"
	Checks []check `json:"checks"`
}

func (r *doctorReport) add(c check) {
	r.Checks = append(r.Checks, c)
}

// finish derives Status from the worst check level.
func (r *doctorReport) finish() {
	r.Status = "ready"
	for _, c := range r.Checks {
		switch c.Level {
		case checkFail:
			r.Status = "errors"
			return
		case checkWarn:
			r.Status = "warnings"
		}
	}
}

// find returns the first check with the given name.
func (r *doctorReport) find(name string) (check, bool) {
	i := slices.IndexFunc(r.Checks, func(c check) bool { return c.Name == name })
	if i < 0 {
		return check{}, false
	}
	return r.Checks[i], true
}

// runDoctorCmd executes the doctor command and returns an exit code:
// 0 when ready (warnings included), 1 on failed checks, 2 on bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	fonts := fs.StringArray("font", nil, "font file to check (repeatable)")
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	fontPaths := append(slices.Clone(*fonts), loadEnvConfig().FontPaths...)
	report := runDoctor(fontPaths)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor runs every check.
func runDoctor(fontPaths []string) *doctorReport {
	report := &doctorReport{}
	checkFont(report, fontPaths)
	checkBrowser(report)
	checkEnvironment(report)
	checkSystem(report)
	report.finish()
	return report
}

// checkFont resolves the raster font the way render does.
func checkFont(report *doctorReport, fontPaths []string) {
	r, err := paramtable.NewRenderer(paramtable.WithFontPaths(fontPaths...))
	if err != nil {
		report.add(check{Group: groupFont, Name: "font", Level: checkFail, Detail: err.Error()})
		return
	}
	defer r.Close()

	if r.FontSupportsCJK() {
		report.add(check{Group: groupFont, Name: "font", Level: checkOK, Detail: r.FontName() + " (CJK)"})
		return
	}
	report.add(check{
		Group:  groupFont,
		Name:   "font",
		Level:  checkWarn,
		Detail: r.FontName() + " has no CJK glyphs; PNG text will not show Chinese characters",
		Hint:   hints.ForFontUnavailable(envFontPath),
	})
}

// checkBrowser looks for the snapshot browser. Without one --snapshot
// downloads a managed Chromium, so a miss is only a warning.
func checkBrowser(report *doctorReport) {
	path := os.Getenv("ROD_BROWSER_BIN")
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			report.add(check{
				Group:  groupBrowser,
				Name:   "chrome",
				Level:  checkWarn,
				Detail: "not found; --snapshot will download Chromium",
				Hint:   hints.ForBrowserMissing(),
			})
			return
		}
	}
	if !fileutil.FileExists(path) {
		report.add(check{Group: groupBrowser, Name: "chrome", Level: checkWarn, Detail: "missing at " + path})
		return
	}
	report.add(check{Group: groupBrowser, Name: "chrome", Level: checkOK, Detail: path})

	// #nosec G204 -- browser path from launcher or env
	if out, err := exec.Command(path, "--version").Output(); err == nil {
		report.add(check{Group: groupBrowser, Name: "version", Level: checkOK, Detail: strings.TrimSpace(string(out))})
	} else {
		report.add(check{Group: groupBrowser, Name: "version", Level: checkWarn, Detail: err.Error()})
	}

	sandbox := "enabled"
	if os.Getenv("ROD_NO_SANDBOX") == "1" {
		sandbox = "disabled (ROD_NO_SANDBOX=1)"
	}
	report.add(check{Group: groupBrowser, Name: "sandbox", Level: checkOK, Detail: sandbox})
}

// ciVars signal a CI runner.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// checkEnvironment reports the platform and whether the Chrome sandbox is
// likely to fail.
func checkEnvironment(report *doctorReport) {
	report.add(check{Group: groupEnv, Name: "platform", Level: checkOK, Detail: runtime.GOOS + "/" + runtime.GOARCH})

	container, signal := isContainer()
	if container {
		report.add(check{Group: groupEnv, Name: "container", Level: checkOK, Detail: "detected (" + signal + ")"})
	}
	ci := slices.ContainsFunc(ciVars, func(v string) bool { return os.Getenv(v) != "" })
	if ci {
		report.add(check{Group: groupEnv, Name: "ci", Level: checkOK, Detail: "detected"})
	}
	if (container || ci) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		report.add(check{
			Group:  groupEnv,
			Name:   "sandbox",
			Level:  checkWarn,
			Detail: "container or CI without ROD_NO_SANDBOX",
			Hint:   hints.ForBrowserConnect(),
		})
	}
	if v := os.Getenv(envFontPath); v != "" {
		report.add(check{Group: groupEnv, Name: envFontPath, Level: checkOK, Detail: v})
	}
}

// isContainer reports whether we run in a container and which signal said
// so.
func isContainer() (bool, string) {
	switch {
	case os.Getenv("PARAMTABLE_CONTAINER") == "1":
		return true, "PARAMTABLE_CONTAINER=1"
	case hints.IsInContainer():
		return true, "/.dockerenv"
	case os.Getenv("container") != "":
		return true, "container=" + os.Getenv("container")
	case os.Getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem reports the pool size and verifies the temp directory used by
// snapshots.
func checkSystem(report *doctorReport) {
	report.add(check{
		Group:  groupSystem,
		Name:   "workers",
		Level:  checkOK,
		Detail: fmt.Sprintf("%d (GOMAXPROCS %d)", paramtable.ResolvePoolSize(0), runtime.GOMAXPROCS(0)),
	})

	_, cleanup, err := fileutil.WriteTempFile("<svg/>", "svg")
	if err != nil {
		report.add(check{Group: groupSystem, Name: "temp", Level: checkFail, Detail: os.TempDir() + " not writable"})
		return
	}
	cleanup()
	report.add(check{Group: groupSystem, Name: "temp", Level: checkOK, Detail: "writable"})
}

// printDoctorReport writes the report grouped by section.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "paramtable doctor")

	for _, group := range checkGroups {
		fmt.Fprintf(w, "\n%s\n", group)
		for _, c := range r.Checks {
			if c.Group != group {
				continue
			}
			fmt.Fprintf(w, "  [%s] %s: %s%s\n", strings.ToUpper(string(c.Level)), c.Name, c.Detail, c.Hint)
		}
	}
	fmt.Fprintln(w)

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	default:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
