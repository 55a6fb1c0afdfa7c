package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syslogsrv/internal/collector"
	"syslogsrv/internal/config"
	"syslogsrv/internal/global"
	"syslogsrv/internal/lifecycle"
	"syslogsrv/internal/logctx"
)

// Runs the collector until a shutdown signal or a fatal writer error
func ServeMode(ctx context.Context, cliOpts *global.CommandSet, commandname string, args []string) (exitCode int) {
	var configPath string
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	commandFlags.Parse(args)

	// Flags parsed after the logger was created
	logctx.SetLogLevel(ctx, global.Verbosity)
	ctx = logctx.AppendCtxTag(ctx, global.NSCLI)

	settings, err := config.Load(ctx, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = 1
		return
	}

	daemon := collector.NewDaemon(settings)
	err = daemon.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting collector: %v\n", err)
		exitCode = 1
		return
	}

	go lifecycle.SignalHandler(ctx, daemon)

	err = daemon.Run()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityNone, global.ErrorLog, "Collector stopped: %v\n", err)
		exitCode = 1
		return
	}
	return
}
