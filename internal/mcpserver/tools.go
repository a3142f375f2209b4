package mcpserver

import (
	"bytes"
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/parkrevil/firebat-sub000/internal/output"
	"github.com/parkrevil/firebat-sub000/internal/service/analysis"
	"github.com/parkrevil/firebat-sub000/pkg/analyzer/duplicates"
)

// AnalyzeInput is the base input for all analyze tools.
type AnalyzeInput struct {
	Paths  []string `json:"paths,omitempty" jsonschema:"Paths to analyze. Defaults to current directory if empty."`
	Format string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

// DependenciesInput adds dependency analysis options.
type DependenciesInput struct {
	AnalyzeInput
	MaxCircuits int `json:"max_circuits,omitempty" jsonschema:"Maximum cycles listed per strongly connected component. Default 100."`
	Top         int `json:"top,omitempty" jsonschema:"Length of the fan-in and fan-out rankings. Default 10."`
}

// CouplingInput adds coupling analysis options.
type CouplingInput struct {
	AnalyzeInput
}

// DuplicatesInput adds duplicate detection options.
type DuplicatesInput struct {
	AnalyzeInput
	Mode              string `json:"mode,omitempty" jsonschema:"Fingerprint mode: exact (default) or shape."`
	MinSize           int    `json:"min_size,omitempty" jsonschema:"Minimum candidate size in syntax nodes. Default 20."`
	NormalizeLiterals bool   `json:"normalize_literals,omitempty" jsonschema:"In shape mode also ignore literal values."`
}

// ReportInput selects the detectors of a combined report.
type ReportInput struct {
	AnalyzeInput
	Detectors []string `json:"detectors,omitempty" jsonschema:"Detectors to run: dependencies, coupling, duplicates. Defaults to all enabled in the configuration."`
}

func getPaths(input AnalyzeInput) []string {
	if len(input.Paths) == 0 {
		return []string{"."}
	}
	return input.Paths
}

func getFormat(input AnalyzeInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func formatOutput(data output.Renderable, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toolResult(data output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeDependencies(ctx context.Context, req *mcp.CallToolRequest, input DependenciesInput) (*mcp.CallToolResult, any, error) {
	result, err := s.svc.Dependencies(ctx, getPaths(input.AnalyzeInput), analysis.DependencyOptions{
		MaxCircuits: input.MaxCircuits,
		TopN:        input.Top,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(output.NewDependencyView(result), getFormat(input.AnalyzeInput))
}

func (s *Server) handleAnalyzeCoupling(ctx context.Context, req *mcp.CallToolRequest, input CouplingInput) (*mcp.CallToolResult, any, error) {
	result, err := s.svc.Coupling(ctx, getPaths(input.AnalyzeInput), analysis.CouplingOptions{})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(&output.CouplingView{Report: result}, getFormat(input.AnalyzeInput))
}

func (s *Server) handleAnalyzeDuplicates(ctx context.Context, req *mcp.CallToolRequest, input DuplicatesInput) (*mcp.CallToolResult, any, error) {
	mode := duplicates.Mode(input.Mode)
	if mode != "" && !mode.Valid() {
		return toolError("invalid mode " + input.Mode + ": use exact or shape")
	}
	result, err := s.svc.Duplicates(ctx, getPaths(input.AnalyzeInput), analysis.DuplicatesOptions{
		Mode:              mode,
		MinSize:           input.MinSize,
		NormalizeLiterals: input.NormalizeLiterals,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(&output.DuplicatesView{Report: result}, getFormat(input.AnalyzeInput))
}

func (s *Server) handleAnalyzeReport(ctx context.Context, req *mcp.CallToolRequest, input ReportInput) (*mcp.CallToolResult, any, error) {
	detectors, err := analysis.ParseDetectors(input.Detectors)
	if err != nil {
		return toolError(err.Error())
	}
	result, err := s.svc.Analyze(ctx, getPaths(input.AnalyzeInput), detectors, analysis.AnalyzeOptions{})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(output.NewReportView(result), getFormat(input.AnalyzeInput))
}
