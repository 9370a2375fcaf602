// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration file management.
//
// Examples:
//
//	tutor config show                     Effective settings (file + env + flags)
//	tutor config path                     Where the file lives
//	tutor config init --force             Overwrite with defaults
//	tutor config set inference.model phi3
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jeranaias/tutor/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args, w io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(args, w)
	case "path":
		path, err := configPath(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, path)
		return nil
	case "init":
		return configInit(args, w)
	case "get":
		return configGet(args, w)
	case "set":
		return configSet(args, w)
	default:
		return &UsageError{Msg: fmt.Sprintf("unknown config subcommand %q", args.Subcommand)}
	}
}

func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPath()
}

func configShow(args Args, w io.Writer) error {
	if err := config.LoadDotEnv(DotEnvFile); err != nil {
		return err
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	if args.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func configInit(args Args, w io.Writer) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !args.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
	return nil
}

func configGet(args Args, w io.Writer) error {
	if err := config.LoadDotEnv(DotEnvFile); err != nil {
		return err
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	val, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return &UsageError{Msg: err.Error()}
	}
	fmt.Fprintln(w, val)
	return nil
}

// configSet edits the file only; environment and flags are not written back.
func configSet(args Args, w io.Writer) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &UsageError{Msg: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", args.ConfigKey, err)
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("[OK]"), args.ConfigKey, args.ConfigVal)
	return nil
}
