// Loads, validates, and persists collector settings
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syslogsrv/internal/global"
	"syslogsrv/internal/logctx"

	"github.com/spf13/viper"
)

// Reads settings from the JSON file at path, with SYSLOGSRV_* environment overrides.
// A missing file is created with defaults first.
func Load(ctx context.Context, path string) (settings Settings, err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSConfig)

	if path == "" {
		path = global.DefaultConfigPath
	}

	_, err = os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			err = fmt.Errorf("failed checking settings file: %w", err)
			return
		}

		err = WriteFile(path, Defaults())
		if err != nil {
			err = fmt.Errorf("failed creating default settings file: %w", err)
			return
		}
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
			"Settings file '%s' not found, created with defaults\n", path)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(global.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			err = fmt.Errorf("invalid settings syntax in '%s': %w", path, err)
			return
		}
		err = nil
	}

	err = v.Unmarshal(&settings)
	if err != nil {
		err = fmt.Errorf("failed decoding settings: %w", err)
		return
	}

	err = settings.Validate()
	if err != nil {
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Loaded settings from '%s'\n", v.ConfigFileUsed())
	return
}

// Writes settings to path as indented JSON, replacing any existing file
func WriteFile(path string, settings Settings) (err error) {
	if path == "" {
		err = fmt.Errorf("no settings file path given")
		return
	}

	confBytes, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling settings: %w", err)
		return
	}
	confBytes = append(confBytes, '\n')

	dir := filepath.Dir(path)
	if dir != "." {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			err = fmt.Errorf("failed to create settings directory: %w", err)
			return
		}
	}

	err = os.WriteFile(path, confBytes, 0600)
	if err != nil {
		err = fmt.Errorf("failed to write settings file: %w", err)
		return
	}
	return
}

// Creates the log directory when it does not exist yet
func EnsureLogDirectory(ctx context.Context, settings Settings) (err error) {
	info, err := os.Stat(settings.LogFileDirectory)
	if err == nil {
		if !info.IsDir() {
			err = fmt.Errorf("log file directory '%s' exists but is not a directory", settings.LogFileDirectory)
		}
		return
	}
	if !os.IsNotExist(err) {
		err = fmt.Errorf("failed checking log file directory: %w", err)
		return
	}

	err = os.MkdirAll(settings.LogFileDirectory, 0755)
	if err != nil {
		err = fmt.Errorf("failed creating log file directory: %w", err)
		return
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Created log file directory '%s'\n", settings.LogFileDirectory)
	return
}
