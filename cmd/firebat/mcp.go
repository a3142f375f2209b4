package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/parkrevil/firebat-sub000/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes firebat's analyzers
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "firebat": {
        "command": "firebat",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_dependencies  Import graph, cycles, fan rankings and edge-cut hints
  - analyze_coupling      Instability, abstractness and distance hotspots
  - analyze_duplicates    Exact and shape clones
  - analyze_report        All of the above in one pass`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP server manifest (server.json)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "image",
						Usage: "OCI image to reference, without tag",
					},
				},
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	svc, closeStore, err := newService(c, []string{"."})
	if err != nil {
		return err
	}
	defer closeStore()

	server := mcpserver.NewServer(version, svc)
	return server.Run(c.Context)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(mcpserver.ManifestOptions{
		Version: version,
		Image:   c.String("image"),
		NoCache: c.Bool("no-cache"),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
