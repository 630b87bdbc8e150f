// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dcclctl loads the demo schema set and encodes, decodes, and
// inspects messages against it, plus runs a minimal queue-pump daemon.
// Adapted from the teacher's cmd/dca entry point — flag.Parse and a
// single config.Run hand-off — widened to cobra subcommands with viper
// configuration binding, matching the CLI stack used elsewhere in the
// retrieval pack.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dfenucci/dccl/dccl"
	"github.com/dfenucci/dccl/internal/app"
	"github.com/dfenucci/dccl/internal/queue"
	"github.com/dfenucci/dccl/internal/queuecfg"
	"github.com/dfenucci/dccl/internal/schemas"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func newFacade() (*dccl.Facade, error) {
	f := dccl.NewFacade(dccl.NewRegistry(), dccl.WithPayloadLimitBits(viper.GetInt("max-frame-bytes")*8))
	for _, desc := range schemas.All {
		if err := f.Load(desc); err != nil {
			return nil, fmt.Errorf("loading schema %s: %w", desc.Name, err)
		}
	}
	return f, nil
}

func schemaFlag(cmd *cobra.Command) (*dccl.MessageDescriptor, error) {
	name, _ := cmd.Flags().GetString("schema")
	desc, ok := schemas.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return desc, nil
}

func main() {
	root := &cobra.Command{
		Use:   "dcclctl",
		Short: "encode, decode and serve DCCL messages",
	}
	root.PersistentFlags().Int("max-frame-bytes", 256, "payload size limit enforced at schema load")
	root.PersistentFlags().String("schema", schemas.GobyMessage.Name, "schema to operate against")
	viper.BindPFlag("max-frame-bytes", root.PersistentFlags().Lookup("max-frame-bytes"))
	viper.SetEnvPrefix("DCCL")
	viper.AutomaticEnv()

	root.AddCommand(encodeCmd(), decodeCmd(), infoCmd(), sizeCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("dcclctl failed")
		os.Exit(1)
	}
}

func encodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode",
		Short: "encode a JSON message from stdin to base64 on stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := schemaFlag(cmd)
			if err != nil {
				return err
			}
			facade, err := newFacade()
			if err != nil {
				return err
			}
			var data map[string]interface{}
			if err := json.NewDecoder(os.Stdin).Decode(&data); err != nil {
				return fmt.Errorf("reading JSON from stdin: %w", err)
			}
			msg, err := messageFromJSON(desc, data)
			if err != nil {
				return err
			}
			b, err := facade.Encode(msg)
			if err != nil {
				return err
			}
			fmt.Println(base64.StdEncoding.EncodeToString(b))
			return nil
		},
	}
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [base64]",
		Short: "decode a base64 message from argv or stdin to JSON on stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, err := newFacade()
			if err != nil {
				return err
			}
			var encoded string
			if len(args) == 1 {
				encoded = args[0]
			} else {
				fmt.Fscan(os.Stdin, &encoded)
			}
			b, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return fmt.Errorf("decoding base64 argument: %w", err)
			}
			msg, err := facade.Decode(b)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(messageToJSON(msg))
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "print the selected schema's compiled layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := schemaFlag(cmd)
			if err != nil {
				return err
			}
			facade, err := newFacade()
			if err != nil {
				return err
			}
			info, err := facade.Info(desc)
			if err != nil {
				return err
			}
			fmt.Print(info)
			return nil
		},
	}
}

func sizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "print the selected schema's min/max encoded size in bits",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := schemaFlag(cmd)
			if err != nil {
				return err
			}
			facade, err := newFacade()
			if err != nil {
				return err
			}
			min, err := facade.MinSize(desc)
			if err != nil {
				return err
			}
			max, err := facade.MaxSize(desc)
			if err != nil {
				return err
			}
			fmt.Printf("%s: min=%d bits, max=%d bits\n", desc.Name, min, max)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run a queue pump that periodically expires stale messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, err := newFacade()
			if err != nil {
				return err
			}
			cfg := &queuecfg.Config{}
			if configPath != "" {
				cfg, err = queuecfg.Load(configPath)
				if err != nil {
					return err
				}
			}
			queues := make(map[uint64]*queue.Queue, len(schemas.All))
			for _, desc := range schemas.All {
				entry, ok := cfg.BySchemaID(desc.ID)
				if !ok {
					entry = queuecfg.QueueEntry{Name: desc.Name, MaxQueue: 16}
				}
				queues[desc.ID] = queue.New(facade, desc, entry, log)
			}

			return app.Run(cmd.Context(), log, 5*time.Second, func(ctx context.Context) error {
				return app.RunAll(ctx, func(ctx context.Context) error {
					ticker := time.NewTicker(time.Second)
					defer ticker.Stop()
					for {
						select {
						case <-ctx.Done():
							return nil
						case now := <-ticker.C:
							for _, q := range queues {
								q.ExpireStale(now)
							}
						}
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "queue configuration XML file")
	return cmd
}
