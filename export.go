package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowlane/internal/bpmn"
	"flowlane/internal/project"
	"flowlane/internal/render"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <input.json> <output>",
	Short: "Exports the root diagram of a project file",
	Long: `The export command loads a project file and writes its root diagram as
project JSON, BPMN 2.0 XML, a PNG image or a plain-text drawing. The format
is taken from --format, or from the output file extension.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if format == "" {
			format = formatFromPath(args[1])
		}
		d, err := openDocument(args[0], appConfig.Canvas)
		if err != nil {
			return err
		}
		if err := exportDocument(d, format, args[1], appConfig); err != nil {
			return err
		}
		color.Green("Exported %s to %s (%s)", args[0], args[1], format)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "t", "", "json, bpmn, png or txt (default: from the output extension)")
	rootCmd.AddCommand(exportCmd)
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bpmn", ".xml":
		return "bpmn"
	case ".png":
		return "png"
	case ".txt":
		return "txt"
	default:
		return "json"
	}
}

// exportDocument writes the live diagram of d to path. JSON carries every
// diagram of the workspace; the other formats draw the live one.
func exportDocument(d *document, format, path string, config *Config) error {
	switch format {
	case "json":
		return project.New(d.name, d.ws.All()).Save(path)
	case "png":
		return render.SavePNG(path, d.store, config.Export)
	case "bpmn", "txt":
	default:
		return fmt.Errorf("unknown export format %q", format)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if format == "bpmn" {
		err = bpmn.Export(file, d.name, d.store)
	} else {
		err = render.Text(file, d.store, config.Canvas)
	}
	if err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (m *model) exportAs(format, ext string) {
	path := m.config.GetSavePath(m.baseName() + ext)
	if err := exportDocument(m.doc, format, path, m.config); err != nil {
		m.log.Error().Err(err).Str("format", format).Msg("export failed")
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = "Exported " + path
}
