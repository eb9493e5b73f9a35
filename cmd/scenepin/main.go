// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scenepin inspects and serves annotation stores: list and export
// stored annotations, place fixture annotations with synthetic anchors, and
// serve a live snapshot feed over WebSockets.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scenepin/scenepin/annot"
	"github.com/scenepin/scenepin/collab"
	"github.com/scenepin/scenepin/math32"
	"github.com/scenepin/scenepin/pin"
)

var (
	dbPath  string
	sceneID string
)

func main() {
	root := &cobra.Command{
		Use:           "scenepin",
		Short:         "inspect and serve 3D annotation stores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "scenepin.db", "SQLite annotation database")
	root.PersistentFlags().StringVar(&sceneID, "scene", "", "restrict to one scene id")

	root.AddCommand(listCmd(), exportCmd(), placeCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scenepin:", err)
		os.Exit(1)
	}
}

func openStore() (*annot.SQLiteStore, error) {
	return annot.OpenSQLite(dbPath)
}

func load(cmd *cobra.Command, st annot.Store) ([]annot.Annotation, error) {
	if sceneID != "" {
		return st.ByScene(cmd.Context(), sceneID)
	}
	return st.List(cmd.Context())
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored annotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			as, err := load(cmd, st)
			if err != nil {
				return err
			}
			for _, a := range as {
				kind := "free"
				if anc, ok := a.Anchor(); ok && anc.OnMesh && anc.Local != nil {
					kind = "mesh:" + anc.Local.MeshID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %q  [%s]\n",
					a.ID, a.SceneID,
					time.UnixMilli(a.CreatedAt).Format(time.RFC3339),
					a.Body, kind)
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "export annotations as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			as, err := load(cmd, st)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(as, "", "\t")
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func placeCmd() *cobra.Command {
	var (
		author  string
		body    string
		x, y, z float32
	)
	cmd := &cobra.Command{
		Use:   "place",
		Short: "insert an annotation with a synthetic free-space anchor",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sceneID == "" {
				return fmt.Errorf("place requires --scene")
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			anc := &pin.Anchor{
				World:   math32.Vec3(x, y, z),
				Time:    time.Now().UnixMilli(),
				SceneID: sceneID,
			}
			a := annot.Annotation{Author: author, Body: body}
			if err := a.SetAnchor(anc); err != nil {
				return err
			}
			a, err = st.Add(cmd.Context(), a)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "annotation author")
	cmd.Flags().StringVar(&body, "body", "", "annotation body text")
	cmd.Flags().Float32Var(&x, "x", 0, "anchor world X")
	cmd.Flags().Float32Var(&y, "y", 0, "anchor world Y")
	cmd.Flags().Float32Var(&z, "z", 0, "anchor world Z")
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		cfgPath string
		addr    string
		mem     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve a live annotation snapshot feed over WebSockets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := collab.DefaultConfig()
			if cfgPath != "" {
				var err error
				cfg, err = collab.LoadConfig(cfgPath)
				if err != nil {
					return err
				}
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			var st annot.Store
			if mem {
				st = annot.NewMemStore()
			} else {
				sq, err := openStore()
				if err != nil {
					return err
				}
				defer sq.Close()
				st = sq
			}

			slog.Info("serving annotation snapshots", "addr", cfg.ListenAddr, "db", dbPath, "mem", mem)
			srv := &http.Server{Addr: cfg.ListenAddr, Handler: collab.NewServer(st)}
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&mem, "mem", false, "use an empty in-memory store")
	return cmd
}
