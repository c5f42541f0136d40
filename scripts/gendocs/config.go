package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/leapstack-labs/qrsheet/internal/cli/config"
)

// generateConfigDocs generates the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents one configuration key.
type ConfigField struct {
	Key         string
	Env         string
	Type        string
	Default     string
	Description string
}

// fieldDescriptions documents the keys of config.Config. configFields fails
// loudly when a key is missing here.
var fieldDescriptions = map[string]string{
	"verbose":             "Log at debug level",
	"log_format":          "Log format: text or json",
	"ui.port":             "Port of the web UI, 0 picks a free one",
	"ui.auto_open":        "Open the browser when the UI starts",
	"ui.session_secret":   "Cookie signing secret, random per process when empty",
	"ui.session_ttl":      "Idle time after which a browser's widget is dropped",
	"ui.max_upload_bytes": "Largest accepted upload or camera frame",
	"qr.size":             "PNG width and height in pixels",
	"qr.recovery":         "Error correction: low, medium, high or highest",
	"scan.frame_errors":   "Frames without a code: ignore or log",
	"scan.frame_interval": "Minimum gap between decoded camera frames",
	"scan.frame_buffer":   "Camera frames queued before new ones are dropped",
	"output_dir":          "Directory generated PNGs are written to",
}

// configFields walks config.Config by its koanf tags, in declaration order.
func configFields() []ConfigField {
	var fields []ConfigField
	var walk func(prefix string, t reflect.Type, v reflect.Value)
	walk = func(prefix string, t reflect.Type, v reflect.Value) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			key := prefix + sf.Tag.Get("koanf")
			fv := v.Field(i)
			if sf.Type.Kind() == reflect.Struct && sf.Type != reflect.TypeOf(time.Duration(0)) {
				walk(key+".", sf.Type, fv)
				continue
			}
			desc, ok := fieldDescriptions[key]
			if !ok {
				log.Fatalf("no description for config key %s", key)
			}
			fields = append(fields, ConfigField{
				Key:         key,
				Env:         config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__")),
				Type:        typeName(sf.Type),
				Default:     fmt.Sprint(fv.Interface()),
				Description: desc,
			})
		}
	}
	def := reflect.ValueOf(config.Default()).Elem()
	walk("", def.Type(), def)
	return fields
}

func typeName(t reflect.Type) string {
	if t == reflect.TypeOf(time.Duration(0)) {
		return "duration"
	}
	return t.Kind().String()
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Configuration", "qrsheet configuration reference")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Configuration")
	w.Paragraph("qrsheet reads `qrsheet.yaml` from the working directory, or from `qrsheet/qrsheet.yaml` in the user config directory. `--config` names a file explicitly.")

	fields := configFields()
	headers := []string{"Key", "Type", "Default", "Environment", "Description"}
	var rows [][]string
	for _, f := range fields {
		defVal := f.Default
		if defVal == "" {
			defVal = "-"
		} else {
			defVal = InlineCode(defVal)
		}
		rows = append(rows, []string{InlineCode(f.Key), f.Type, defVal, InlineCode(f.Env), f.Description})
	}
	w.Table(headers, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `log_format: json
ui:
  port: 9000
  auto_open: false
  session_ttl: 1h
qr:
  size: 512
  recovery: high
scan:
  frame_errors: log
  frame_interval: 200ms`)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
