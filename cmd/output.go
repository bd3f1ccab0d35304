package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"

	"github.com/invenia/lambdalayers/internal/config"
	"github.com/invenia/lambdalayers/internal/types"
	"github.com/invenia/lambdalayers/registry"
)

const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
)

// headerRow is the row index StyleFunc receives for the header.
const headerRow = 0

// lambdaTimeLayout is how the Lambda API formats CreatedDate.
const lambdaTimeLayout = "2006-01-02T15:04:05.000-0700"

// render writes v to stdout in the configured output format.
func (a *app) render(v interface{}) error {
	switch a.cfg.Output {
	case config.OutputJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		_, err = a.out.Write(data)
		return err
	default:
		return renderTable(a.out, v)
	}
}

func renderTable(w io.Writer, v interface{}) error {
	var (
		headers []string
		rows    [][]string
	)

	switch v := v.(type) {
	case []registry.LayerSummary:
		headers = []string{"NAME", "LATEST", "DESCRIPTION", "RUNTIMES", "CREATED"}
		for _, layer := range v {
			row := []string{layer.LayerName, "", "", "", ""}
			if latest := layer.LatestMatchingVersion; latest != nil {
				row[1] = strconv.FormatInt(latest.Version, 10)
				row[2] = latest.Description
				row[3] = strings.Join(latest.CompatibleRuntimes, ", ")
				row[4] = createdAgo(latest.CreatedDate)
			}
			rows = append(rows, row)
		}

	case []registry.LayerVersion:
		headers = []string{"VERSION", "DESCRIPTION", "RUNTIMES", "CREATED", "ARN"}
		for _, version := range v {
			rows = append(rows, []string{
				strconv.FormatInt(version.Version, 10),
				version.Description,
				strings.Join(version.CompatibleRuntimes, ", "),
				createdAgo(version.CreatedDate),
				version.LayerVersionArn,
			})
		}

	case *registry.PublishedLayerVersion:
		headers = []string{"FIELD", "VALUE"}
		rows = [][]string{
			{"Layer Version ARN", v.LayerVersionArn},
			{"Version", strconv.FormatInt(v.Version, 10)},
			{"Description", v.Description},
			{"Runtimes", strings.Join(v.CompatibleRuntimes, ", ")},
			{"Code Size", humanize.Bytes(uint64(v.Content.CodeSize))},
			{"Code SHA-256", v.Content.CodeSha256},
		}

	case *types.BuildResult:
		headers = []string{"FIELD", "VALUE"}
		size := "unknown"
		if info, err := os.Stat(v.OutputPath); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		rows = [][]string{
			{"Package", v.OutputPath},
			{"Strategy", string(v.Strategy)},
			{"Runtimes", strings.Join(v.Runtimes, ", ")},
			{"Size", size},
			{"Duration", v.Duration.Round(time.Millisecond).String()},
		}

	default:
		return fmt.Errorf("no table layout for %T", v)
	}

	renderer := lipgloss.NewRenderer(w)
	headerStyle := renderer.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle := renderer.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(renderer.NewStyle().Foreground(colorMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// createdAgo renders a Lambda timestamp relative to now, or as-is when it
// cannot be parsed.
func createdAgo(created string) string {
	t, err := time.Parse(lambdaTimeLayout, created)
	if err != nil {
		return created
	}
	return humanize.Time(t)
}
