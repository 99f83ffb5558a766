package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: paramtable <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render records files to SVG and PNG tables")
	fmt.Fprintln(w, "  doctor     Check fonts, browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'paramtable help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: paramtable render <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render the detection parameters of inspection items as tables.")
	fmt.Fprintln(w, "Each records file produces <name>_<device>.svg and <name>_<device>.png.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Records file (.yaml, .yml, .json) or directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to each file)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -d, --devices <list>      Devices: desktop,tablet,phone (default: all)")
	fmt.Fprintln(w, "  -s, --sort                Regular parameters first, then sort_order")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --no-svg              Skip SVG output")
	fmt.Fprintln(w, "      --no-png              Skip PNG output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watermark:")
	fmt.Fprintln(w, "      --wm-text <s>         SVG watermark text")
	fmt.Fprintln(w, "      --no-watermark        Disable the SVG text watermark")
	fmt.Fprintln(w, "      --no-anti-scrape      Disable the SVG anti-scrape layer")
	fmt.Fprintln(w, "      --seed <n>            Anti-scrape random seed (0 = random)")
	fmt.Fprintln(w, "      --png-watermark       Tile a watermark over the PNG output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fonts:")
	fmt.Fprintln(w, "      --font <path>         Font file for PNG text (repeatable)")
	fmt.Fprintln(w, "      --no-system-fonts     Do not search system font directories")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Snapshot:")
	fmt.Fprintln(w, "      --snapshot            Also render the SVG in headless Chrome")
	fmt.Fprintln(w, "  -t, --timeout <d>         Snapshot timeout (default: 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PARAMTABLE_CONFIG         Config name or path")
	fmt.Fprintln(w, "  PARAMTABLE_OUTPUT_DIR     Default output directory")
	fmt.Fprintln(w, "  PARAMTABLE_FONT_PATH      Font files, separated like PATH")
	fmt.Fprintln(w, "  PARAMTABLE_TIMEOUT        Snapshot timeout")
	fmt.Fprintln(w, "  PARAMTABLE_WORKERS        Parallel workers")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: paramtable doctor [--json] [--font <path>]...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the raster font, the snapshot browser and the environment.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: paramtable version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: paramtable help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
