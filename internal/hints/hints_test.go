package hints

// Notes:
// - Tests that read the environment cannot use t.Parallel() because they use
//   t.Setenv() and swap the package-level IsInContainer variable.
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment-dependent suggestions
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		ci          string
		noSandbox   string
		browserBin  string
		wantSandbox bool
		wantBin     bool
	}{
		{name: "CI without settings", ci: "true", wantSandbox: true, wantBin: true},
		{name: "Docker without settings", container: true, wantSandbox: true, wantBin: true},
		{name: "sandbox already disabled", container: true, noSandbox: "1", wantBin: true},
		{name: "browser binary set", browserBin: "/usr/bin/chromium"},
		{name: "everything configured", container: true, ci: "true", noSandbox: "1", browserBin: "/usr/bin/chromium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			defer func() { IsInContainer = orig }()
			IsInContainer = func() bool { return tt.container }

			t.Setenv("CI", tt.ci)
			t.Setenv("GITHUB_ACTIONS", "")
			t.Setenv("GITLAB_CI", "")
			t.Setenv("JENKINS_URL", "")
			t.Setenv("ROD_NO_SANDBOX", tt.noSandbox)
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()

			if got := strings.Contains(hint, "ROD_NO_SANDBOX"); got != tt.wantSandbox {
				t.Errorf("ROD_NO_SANDBOX suggested = %v, want %v (%q)", got, tt.wantSandbox, hint)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("ROD_BROWSER_BIN suggested = %v, want %v (%q)", got, tt.wantBin, hint)
			}
			if !tt.wantSandbox && !tt.wantBin && hint != "" {
				t.Errorf("expected empty hint, got %q", hint)
			}
		})
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	hint := ForConfigNotFound(nil)
	if !strings.Contains(hint, "--config") {
		t.Errorf("hint should mention --config, got %q", hint)
	}

	hint = ForConfigNotFound([]string{"./render.yaml", "/home/u/.config/paramtable/render.yaml"})
	if !strings.Contains(hint, "create /home/u/.config/paramtable/render.yaml") {
		t.Errorf("hint should suggest the user config path, got %q", hint)
	}
}

func TestForUnknownDevice(t *testing.T) {
	t.Parallel()

	if hint := ForUnknownDevice(nil); hint != "" {
		t.Errorf("expected empty hint, got %q", hint)
	}
	if hint := ForUnknownDevice([]string{"desktop", "tablet", "phone"}); !strings.Contains(hint, "desktop, tablet, phone") {
		t.Errorf("hint should list devices, got %q", hint)
	}
}

func TestForFontUnavailable(t *testing.T) {
	t.Setenv("PARAMTABLE_FONT_PATH", "")
	if hint := ForFontUnavailable("PARAMTABLE_FONT_PATH"); !strings.Contains(hint, "PARAMTABLE_FONT_PATH") {
		t.Errorf("hint should suggest the env var, got %q", hint)
	}

	t.Setenv("PARAMTABLE_FONT_PATH", "/fonts/x.ttf")
	if hint := ForFontUnavailable("PARAMTABLE_FONT_PATH"); strings.Contains(hint, "PARAMTABLE_FONT_PATH") {
		t.Errorf("hint should not repeat an env var that is already set, got %q", hint)
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	for _, h := range []string{
		ForTimeout(),
		ForBrowserMissing(),
		ForOutputDirectory(),
		ForRecordsFormat(),
		ForConfigNotFound(nil),
		ForFontUnavailable(""),
	} {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
