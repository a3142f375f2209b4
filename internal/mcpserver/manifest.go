package mcpserver

import (
	"encoding/json"
	"strings"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName     = "io.github.parkrevil/firebat"
	repositoryURL  = "https://github.com/parkrevil/firebat"
	defaultImage   = "ghcr.io/parkrevil/firebat"
	configEnvVar   = "FIREBAT_CONFIG"
)

// Manifest is the server.json document published to MCP registries.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository contains source repository information.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package describes how a client starts the server.
type Package struct {
	RegistryType         string                `json:"registryType"`
	Identifier           string                `json:"identifier"`
	RuntimeArguments     []Argument            `json:"runtimeArguments,omitempty"`
	PackageArguments     []Argument            `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvironmentVariable `json:"environmentVariables,omitempty"`
	Transport            Transport             `json:"transport"`
}

// Argument is a positional or named command-line argument.
type Argument struct {
	Type  string `json:"type"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// EnvironmentVariable documents a variable the server reads.
type EnvironmentVariable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
}

// Transport describes the communication method.
type Transport struct {
	Type string `json:"type"`
}

// ManifestOptions controls how the published package is launched.
type ManifestOptions struct {
	// Version defaults to 0.0.0. A leading "v" is dropped.
	Version string
	// Image is the OCI image without tag. Defaults to the project image.
	Image string
	// NoCache adds --no-cache so the server never writes .firebat/cache
	// into the mounted workspace.
	NoCache bool
}

// GenerateManifest renders the server.json manifest for firebat's stdio
// server. The image runs with the workspace mounted at /workspace.
func GenerateManifest(opts ManifestOptions) ([]byte, error) {
	version := strings.TrimPrefix(opts.Version, "v")
	if version == "" || version == "dev" {
		version = "0.0.0"
	}
	image := opts.Image
	if image == "" {
		image = defaultImage
	}

	var args []Argument
	if opts.NoCache {
		args = append(args, Argument{Type: "positional", Value: "--no-cache"})
	}
	args = append(args, Argument{Type: "positional", Value: "mcp"})

	manifest := Manifest{
		Schema:      manifestSchema,
		Name:        serverName,
		Title:       "Firebat",
		Description: "Import cycle, coupling and duplicate code analysis for TypeScript and JavaScript",
		Version:     version,
		Repository: &Repository{
			URL:    repositoryURL,
			Source: "github",
		},
		Packages: []Package{
			{
				RegistryType: "oci",
				Identifier:   image + ":" + version,
				RuntimeArguments: []Argument{
					{Type: "named", Name: "-v", Value: "${PWD}:/workspace"},
					{Type: "named", Name: "-w", Value: "/workspace"},
				},
				PackageArguments: args,
				EnvironmentVariables: []EnvironmentVariable{{
					Name:        configEnvVar,
					Description: "Path to a firebat.toml, .yaml or .json config inside the workspace",
				}},
				Transport: Transport{Type: "stdio"},
			},
		},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
