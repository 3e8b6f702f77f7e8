package main

import (
	"fmt"
	"go/token"
	"strings"
	"text/template"

	"github.com/gattkit/gattkit-go/pkg/spec"
	"github.com/gattkit/gattkit-go/pkg/specparse"
)

var funcMap = template.FuncMap{
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
}

var templates = template.Must(template.New("").Funcs(funcMap).Parse(fileTmpl + characteristicTmpl))

// characteristicData holds pre-computed names for one characteristic.
type characteristicData struct {
	Name    string
	GoName  string
	UUID    string
	Type    string
	Tags    []tagData
	Flags   []string
	OpCodes []string
}

type tagData struct {
	ConstName string
	Tag       string
}

type fileData struct {
	Package         string
	Characteristics []characteristicData
}

// Generate renders the tag constants of chars as a Go file in package pkg.
// Characteristics whose flags and op code fields signal nothing are skipped.
func Generate(pkg string, chars []*spec.Characteristic) (string, error) {
	if !token.IsIdentifier(pkg) {
		return "", fmt.Errorf("invalid package name %q", pkg)
	}

	data := fileData{Package: pkg}
	seen := make(map[string]string)
	for _, c := range chars {
		cd, ok := characteristicFor(c)
		if !ok {
			continue
		}
		if prev, dup := seen[cd.GoName]; dup {
			return "", fmt.Errorf("%q and %q both map to %s", prev, c.Name(), cd.GoName)
		}
		seen[cd.GoName] = c.Name()
		data.Characteristics = append(data.Characteristics, cd)
	}

	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, "file", data); err != nil {
		return "", fmt.Errorf("template file: %w", err)
	}
	return b.String(), nil
}

func characteristicFor(c *spec.Characteristic) (characteristicData, bool) {
	flags := spec.AllFlags(c.FlagsField())
	opCodes := spec.AllOpCodes(c.OpCodesField())

	all := spec.NewTags()
	all.Union(flags)
	all.Union(opCodes)
	if all.Len() == 0 {
		return characteristicData{}, false
	}

	name := specparse.GoName(c.Name())
	cd := characteristicData{
		Name:    c.Name(),
		GoName:  name,
		UUID:    c.UUID(),
		Type:    c.Type(),
		Flags:   flags.Sorted(),
		OpCodes: opCodes.Sorted(),
	}
	for _, tag := range all.Sorted() {
		cd.Tags = append(cd.Tags, tagData{ConstName: name + "Tag" + specparse.GoName(tag), Tag: tag})
	}
	return cd, true
}

const fileTmpl = `{{define "file"}}// Code generated by gatt-taggen. DO NOT EDIT.

package {{.Package}}
{{range .Characteristics}}{{template "characteristic" .}}{{end}}{{end}}`

const characteristicTmpl = `{{define "characteristic"}}
// {{.Name}}{{if .UUID}} ({{.UUID}}){{end}}.
const (
{{- if .UUID}}
	{{.GoName}}UUID = {{quote .UUID}}
{{- end}}
{{- if .Type}}
	{{.GoName}}Type = {{quote .Type}}
{{- end}}
{{- range .Tags}}
	{{.ConstName}} = {{quote .Tag}}
{{- end}}
)
{{if .Flags}}
// {{.GoName}}FlagTags lists the tags the flags field can signal.
var {{.GoName}}FlagTags = []string{ {{- range $i, $t := .Flags}}{{if $i}}, {{end}}{{quote $t}}{{end -}} }
{{end}}
{{- if .OpCodes}}
// {{.GoName}}OpCodeTags lists the tags the op code field can signal.
var {{.GoName}}OpCodeTags = []string{ {{- range $i, $t := .OpCodes}}{{if $i}}, {{end}}{{quote $t}}{{end -}} }
{{end}}
{{- end}}`
