package mcpserver

import (
	"encoding/json"

	"github.com/panbanda/wraith/pkg/deadcode/plugins"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName     = "io.github.panbanda/wraith"
	repositoryURL  = "https://github.com/panbanda/wraith"
	imageName      = "ghcr.io/panbanda/wraith"

	// metaKey is the registry namespace for publisher-provided metadata.
	metaKey = "io.modelcontextprotocol.registry/publisher-provided"
)

// Manifest is the server.json document published to the MCP registry.
type Manifest struct {
	Schema      string                   `json:"$schema"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Version     string                   `json:"version"`
	Repository  Repository               `json:"repository"`
	Packages    []Package                `json:"packages"`
	Meta        map[string]PublisherMeta `json:"_meta,omitempty"`
}

type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is the container image that runs `wraith mcp`.
type Package struct {
	RegistryType         string     `json:"registryType"`
	Identifier           string     `json:"identifier"`
	Version              string     `json:"version"`
	RuntimeHint          string     `json:"runtimeHint,omitempty"`
	PackageArguments     []Argument `json:"packageArguments"`
	EnvironmentVariables []EnvVar   `json:"environmentVariables,omitempty"`
	Transport            Transport  `json:"transport"`
}

type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type EnvVar struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsRequired  bool   `json:"isRequired"`
}

type Transport struct {
	Type string `json:"type"`
}

// PublisherMeta lists what the server offers so registries can show it
// without starting the server.
type PublisherMeta struct {
	Tools   []string `json:"tools"`
	Prompts []string `json:"prompts"`
	Plugins []string `json:"plugins"`
}

// GenerateManifest builds server.json for the given release version.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	meta := PublisherMeta{Tools: append([]string(nil), toolNames...)}
	for _, p := range loadPrompts() {
		meta.Prompts = append(meta.Prompts, p.name)
	}
	for _, p := range plugins.List() {
		meta.Plugins = append(meta.Plugins, p.Name)
	}

	manifest := Manifest{
		Schema:      manifestSchema,
		Name:        serverName,
		Description: "Dead code detection for Ruby, Rails and Sorbet projects",
		Version:     version,
		Repository:  Repository{URL: repositoryURL, Source: "github"},
		Packages: []Package{{
			RegistryType:     "oci",
			Identifier:       imageName,
			Version:          version,
			RuntimeHint:      "docker",
			PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
			EnvironmentVariables: []EnvVar{{
				Name:        "WRAITH_CONFIG",
				Description: "Path to a wraith.toml, .yaml or .json config file",
			}},
			Transport: Transport{Type: "stdio"},
		}},
		Meta: map[string]PublisherMeta{metaKey: meta},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
