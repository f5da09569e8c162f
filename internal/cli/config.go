// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for medchat.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration as TOML
//   path                Show configuration file path
//   get <key>           Show one value by dotted key
//   init                Write a default configuration file
//   validate            Check the configuration and report every problem
//
// Examples:
//   medchat config
//   medchat config show --json
//   medchat config get gateway.base_url
//   medchat --config ./dev.toml config init
//   medchat --config ./dev.toml config validate

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/medchat-tui/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args, d Deps) error {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}

	switch args.Subcommand {
	case "", "show":
		return OutputJSON(d.Out, args.JSON, "config show", func() (interface{}, error) {
			if !args.JSON {
				if d.Err != nil && d.ConfigPath != "" {
					fmt.Fprintln(d.Err, DimStyle.Render("# "+d.ConfigPath))
				}
				if err := toml.NewEncoder(d.Out).Encode(cfg); err != nil {
					return nil, WrapError(err, "failed to encode configuration")
				}
			}
			return cfg, nil
		})

	case "path":
		return OutputJSON(d.Out, args.JSON, "config path", func() (interface{}, error) {
			if !args.JSON {
				fmt.Fprintln(d.Out, d.ConfigPath)
			}
			return map[string]string{"path": d.ConfigPath}, nil
		})

	case "get":
		if args.Key == "" {
			return ErrMissingArgument("key", "medchat config get <section.field>")
		}
		return OutputJSON(d.Out, args.JSON, "config get", func() (interface{}, error) {
			v, err := cfg.Get(args.Key)
			if err != nil {
				return nil, &ValidationError{Field: "key", Reason: err.Error()}
			}
			if !args.JSON {
				fmt.Fprintln(d.Out, v)
			}
			return map[string]interface{}{"key": args.Key, "value": v}, nil
		})

	case "init":
		return OutputJSON(d.Out, args.JSON, "config init", func() (interface{}, error) {
			if d.ConfigPath == "" {
				return nil, &ValidationError{Reason: "no configuration path; pass --config PATH"}
			}
			if _, err := os.Stat(d.ConfigPath); err == nil {
				return nil, &ValidationError{
					Reason:  fmt.Sprintf("%s already exists", d.ConfigPath),
					Example: "medchat config show",
				}
			} else if !errors.Is(err, os.ErrNotExist) {
				return nil, WrapError(err, "failed to check configuration file")
			}
			if err := config.Save(config.Default(), d.ConfigPath); err != nil {
				return nil, err
			}
			if !args.JSON {
				status(d, "ok", "Wrote "+d.ConfigPath)
			}
			return map[string]string{"path": d.ConfigPath}, nil
		})

	case "validate", "check":
		return OutputJSON(d.Out, args.JSON, "config validate", func() (interface{}, error) {
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			if !args.JSON {
				status(d, "ok", "Configuration is valid")
			}
			return map[string]bool{"valid": true}, nil
		})
	}

	return &ValidationError{
		Field:   "subcommand",
		Reason:  fmt.Sprintf("unknown config subcommand %q", args.Subcommand),
		Example: "medchat config [show|path|get|init|validate]",
	}
}
