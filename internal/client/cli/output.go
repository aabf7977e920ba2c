package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/playsync/internal/models"
	"github.com/iudanet/playsync/internal/validation"
)

const entityTemplate = `
=== Play {{.ID}} ===

Version:       {{.Version}}
Modified by:   {{.LastModifiedBy}}
Modified at:   {{time .LastModifiedAt}}
Created at:    {{time .CreatedAt}}

Payload:
---
{{payload .Payload}}
---
`

const conflictTemplate = `
=== Conflict {{.ID}} ===

Entity:         {{.EntityID}}
Detected by:    {{.DetectedBy}} at {{time .DetectedAt}}
Base version:   {{.BaseVersion}}
Server version: {{.ServerVersion}}
{{- if .ResolvedAt}}
Resolved by:    {{.ResolvedBy}} at {{time .ResolvedAt}}
Strategy:       {{.Strategy}}
Result version: {{.ResultingVersion}}
{{- else}}
Status:         unresolved
{{- end}}

Server payload ({{short .ServerDigest}}):
---
{{payload .ServerPayload}}
---

Client payload ({{short .ClientDigest}}):
---
{{payload .ClientPayload}}
---
`

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"time":    formatTime,
	"payload": formatPayload,
	"short":   shortDigest,
}).Parse(`{{define "entity"}}` + entityTemplate + `{{end}}{{define "conflict"}}` + conflictTemplate + `{{end}}`))

// formatTime принимает time.Time и *time.Time
func formatTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Local().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return "-"
		}
		return t.Local().Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// formatPayload печатает JSON с отступами, остальное как есть
func formatPayload(payload []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return string(payload)
	}
	return buf.String()
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	if digest == "" {
		return "no digest"
	}
	return digest
}

func (o *RootOptions) jsonOutput() bool {
	return o.Format == "json"
}

// printJSON пишет v в вывод команды
func (o *RootOptions) printJSON(v any) error {
	enc := json.NewEncoder(o.IO)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o *RootOptions) printTemplate(name string, data any) error {
	return templates.ExecuteTemplate(o.IO, name, data)
}

func (o *RootOptions) printConflict(record *models.ConflictRecord) error {
	return o.printTemplate("conflict", record)
}

// readPlay читает файл схемы ("-" - stdin) и проверяет его содержимое
func readPlay(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}

	var (
		payload []byte
		err     error
	)
	if path == "-" {
		payload, err = io.ReadAll(cmd.InOrStdin())
	} else {
		payload, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read play file: %w", err)
	}

	if _, err := validation.ValidatePlay(payload); err != nil {
		return nil, fmt.Errorf("invalid play file %s: %w", path, err)
	}

	return payload, nil
}

// playName возвращает название схемы для табличного вывода
func playName(payload []byte) string {
	var play models.Play
	if err := json.Unmarshal(payload, &play); err != nil || play.Name == "" {
		return "-"
	}
	return strings.TrimSpace(play.Name)
}
