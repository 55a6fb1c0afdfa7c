package cli

import "syslogsrv/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "Syslog Collector (syslogsrv)",
		FullDescription: "  Receives syslog messages over UDP and TLS and writes them to dated log files",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Collecting
	root.ChildCommands["serve"] = &global.CommandSet{
		CommandName:     "serve",
		Description:     "Collect Messages",
		FullDescription: "Listens on the configured UDP and TLS ports, buffers received lines and appends them to the log file in timed batches",
		ChildCommands:   nil,
	}

	// Setup
	root.ChildCommands["configure"] = &global.CommandSet{
		CommandName:     "configure",
		Description:     "Setup Actions",
		FullDescription: "Create settings templates and test certificates, install or remove the service",
		ChildCommands:   nil,
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
