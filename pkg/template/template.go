package template

import (
	"fmt"
	"strings"
)

// TemplateType selects the kind of warden.toml scaffold to generate.
type TemplateType string

const (
	TypeWeb     TemplateType = "web"
	TypeWebapp  TemplateType = "webapp"
	TypeAPI     TemplateType = "api"
	TypeService TemplateType = "service"
	TypeSimple  TemplateType = "simple"
	TypeBasic   TemplateType = "basic"
)

// ConfigTemplate holds the fields rendered into a warden.toml scaffold.
type ConfigTemplate struct {
	Name       string
	Command    string
	WorkDir    string
	Port       int
	LogDir     string
	Env        []string
	EnvFiles   []string
	History    bool
	HistoryDSN string
}

// Generator provides template generation functionality
type Generator struct{}

// NewGenerator creates a new template generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate creates a config template based on the specified type and name
func (g *Generator) Generate(templateType TemplateType, name string) (*ConfigTemplate, error) {
	switch templateType {
	case TypeWeb, TypeWebapp:
		return g.generateWebTemplate(name), nil
	case TypeAPI, TypeService:
		return g.generateAPITemplate(name), nil
	case TypeSimple, TypeBasic:
		return g.generateSimpleTemplate(name), nil
	default:
		return nil, fmt.Errorf("unknown template type: %s (supported: web, api, simple)", templateType)
	}
}

// GenerateTOML renders the scaffold as warden.toml content.
func (g *Generator) GenerateTOML(templateType TemplateType, name string) (string, error) {
	tpl, err := g.Generate(templateType, name)
	if err != nil {
		return "", err
	}
	return tpl.TOML(), nil
}

// GetSupportedTypes returns a list of all supported template types
func (g *Generator) GetSupportedTypes() []string {
	return []string{
		string(TypeWeb),
		string(TypeAPI),
		string(TypeSimple),
	}
}

// TOML renders the template. Optional fields are emitted commented out so
// the generated file doubles as documentation.
func (t *ConfigTemplate) TOML() string {
	var b strings.Builder
	b.WriteString("[worker]\n")
	fmt.Fprintf(&b, "name = %q\n", t.Name)
	fmt.Fprintf(&b, "command = %q\n", t.Command)
	if t.WorkDir != "" {
		fmt.Fprintf(&b, "workdir = %q\n", t.WorkDir)
	}
	if t.Port > 0 {
		fmt.Fprintf(&b, "port = %d\n", t.Port)
	} else {
		b.WriteString("# port = 8004\n")
	}
	if len(t.Env) > 0 {
		fmt.Fprintf(&b, "env = [%s]\n", quoteList(t.Env))
	}
	if len(t.EnvFiles) > 0 {
		fmt.Fprintf(&b, "env_files = [%s]\n", quoteList(t.EnvFiles))
	} else {
		b.WriteString("# env_files = [\".env\"]\n")
	}

	b.WriteString("\n[worker.log]\n")
	if t.LogDir != "" {
		fmt.Fprintf(&b, "dir = %q\n", t.LogDir)
	} else {
		b.WriteString("# dir = \"./logs\"\n")
	}

	b.WriteString("\n[history]\n")
	fmt.Fprintf(&b, "enabled = %t\n", t.History)
	if t.HistoryDSN != "" {
		fmt.Fprintf(&b, "dsn = %q\n", t.HistoryDSN)
	} else {
		b.WriteString("# dsn = \"sqlite://warden_history.db\"\n")
	}

	b.WriteString("\n[server]\n")
	b.WriteString("# listen = \"127.0.0.1:8080\"\n")
	b.WriteString("# base_path = \"/api\"\n")
	return b.String()
}

func quoteList(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

// Helper functions to create specific templates

func (g *Generator) generateWebTemplate(name string) *ConfigTemplate {
	return &ConfigTemplate{
		Name:    name,
		Command: "python -m http.server ${PORT}",
		Port:    8004,
		LogDir:  "./logs",
		Env: []string{
			"ENV=production",
		},
	}
}

func (g *Generator) generateAPITemplate(name string) *ConfigTemplate {
	return &ConfigTemplate{
		Name:    name,
		Command: "./api-server --port ${PORT}",
		Port:    8004,
		LogDir:  "./logs",
		Env: []string{
			"LOG_LEVEL=info",
		},
		History:    true,
		HistoryDSN: "sqlite://warden_history.db",
	}
}

func (g *Generator) generateSimpleTemplate(name string) *ConfigTemplate {
	return &ConfigTemplate{
		Name:    name,
		Command: "echo 'Hello from " + name + "'",
	}
}
