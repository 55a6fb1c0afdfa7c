package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syslogsrv/internal/global"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Signals (serve): SIGHUP flushes queued messages immediately, SIGINT/SIGTERM/SIGQUIT flush and exit.
Settings keys may be overridden by environment variables prefixed SYSLOGSRV_ (e.g. SYSLOGSRV_TLSPORT).
`
	menuIndent int = 2
)

// Full standardized help menu on stdout
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(os.Stdout, os.Args[0], fs, command, rootCmd)
}

func writeHelpMenu(out io.Writer, program string, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	curCmdSet := rootCmd
	isRoot := command == "" || command == RootCLICommand
	if !isRoot {
		var found bool
		curCmdSet, found = rootCmd.ChildCommands[command]
		if !found {
			fmt.Fprintf(out, "Unknown command: %s\n", command)
			return
		}
	}

	// Usage line: program [command] [subcommand] [option]
	usageParts := []string{program}
	if !isRoot {
		usageParts = append(usageParts, curCmdSet.CommandName)
	}
	switch len(curCmdSet.ChildCommands) {
	case 0:
	case 1:
		for name := range curCmdSet.ChildCommands {
			usageParts = append(usageParts, name)
		}
	default:
		usageParts = append(usageParts, "[subcommand]")
	}
	if curCmdSet.UsageOption != "" {
		usageParts = append(usageParts, curCmdSet.UsageOption)
	}
	fmt.Fprintf(out, "Usage: %s\n\n", strings.Join(usageParts, " "))

	if isRoot {
		fmt.Fprintf(out, "%s\n%s\n\n", curCmdSet.Description, curCmdSet.FullDescription)
	} else if curCmdSet.FullDescription != "" {
		fmt.Fprintf(out, "%sDescription:\n%s%s\n\n", pad(menuIndent), pad(menuIndent+2), curCmdSet.FullDescription)
	}

	if len(curCmdSet.ChildCommands) > 0 {
		writeSubcommands(out, curCmdSet)
	}

	writeFlagOptions(out, fs)

	if isRoot {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

// Sorted, name-aligned list of child commands
func writeSubcommands(out io.Writer, cmdSet *global.CommandSet) {
	names := make([]string, 0, len(cmdSet.ChildCommands))
	width := 0
	for name := range cmdSet.ChildCommands {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%sSubcommands:\n", pad(menuIndent))
	for _, name := range names {
		fmt.Fprintf(out, "%s%-*s  - %s\n", pad(menuIndent+2), width, name, cmdSet.ChildCommands[name].Description)
	}
	fmt.Fprintln(out)
}

// One help row per flag usage text, so -c and --config share a line
type flagRow struct {
	short      string
	long       []string
	usage      string
	defaultVal string
}

func (row flagRow) names() (text string) {
	var parts []string
	if row.short != "" {
		parts = append(parts, "-"+row.short)
	}
	for _, name := range row.long {
		parts = append(parts, "--"+name)
	}
	text = strings.Join(parts, ", ")
	return
}

// Groups flags by usage text. Rows without a short flag are indented so long names line up.
func writeFlagOptions(out io.Writer, fs *flag.FlagSet) {
	const shortColumn int = len("-x, ")

	byUsage := make(map[string]*flagRow)
	var rows []*flagRow
	fs.VisitAll(func(arg *flag.Flag) {
		row, seen := byUsage[arg.Usage]
		if !seen {
			row = &flagRow{usage: arg.Usage, defaultVal: arg.DefValue}
			byUsage[arg.Usage] = row
			rows = append(rows, row)
		}
		if len(arg.Name) == 1 {
			row.short = arg.Name
		} else {
			row.long = append(row.long, arg.Name)
		}
	})

	sortKey := func(row *flagRow) string {
		if row.short != "" {
			return strings.ToLower(row.short)
		}
		return strings.ToLower(row.long[0])
	}
	sort.Slice(rows, func(i, j int) bool {
		return sortKey(rows[i]) < sortKey(rows[j])
	})

	width := 0
	for _, row := range rows {
		left := len(row.names())
		if row.short == "" {
			left += shortColumn
		}
		width = max(width, left)
	}

	fmt.Fprintf(out, "%sOptions:\n", pad(menuIndent))
	for _, row := range rows {
		left := row.names()
		indent := menuIndent
		if row.short == "" {
			indent += shortColumn
		}

		// Skip printing any "empty" defaults
		desc := row.usage
		if row.defaultVal != "" && row.defaultVal != "false" && row.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", row.defaultVal)
		}

		fmt.Fprintf(out, "%s%-*s  %s\n", pad(indent), width-(indent-menuIndent), left, desc)
	}
}

func pad(width int) string {
	return strings.Repeat(" ", width)
}
