package definitions

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/endguard/internal/entities"
	"github.com/KirkDiggler/endguard/internal/errors"
	"github.com/KirkDiggler/endguard/internal/loot"
	"github.com/KirkDiggler/endguard/internal/particles"
	"github.com/KirkDiggler/endguard/internal/pkg/weighted"
)

// Subdirectories of the definitions directory
const (
	TemplatesDir = "templates"
	LootDir      = "loot"
	ShapesDir    = "shapes"
)

type templatesFile struct {
	Templates []yaml.Node `yaml:"templates"`
}

type tablesFile struct {
	Tables []yaml.Node `yaml:"tables"`
}

type shapesFile struct {
	Shapes []yaml.Node `yaml:"shapes"`
}

// LoaderConfig configures a Loader
type LoaderConfig struct {
	Dir        string
	Compile    *particles.CompileConfig
	LootSource weighted.Source
}

// Validate validates the config
func (c *LoaderConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Dir", c.Dir, vb)
	if c.Compile == nil {
		vb.RequiredField("Compile")
	} else if err := c.Compile.Validate(); err != nil {
		vb.Field("Compile", err.Error())
	}
	return vb.Build()
}

// Loader reads a definitions directory into a Catalog
type Loader struct {
	dir     string
	compile *particles.CompileConfig
	source  weighted.Source
}

// NewLoader creates a loader
func NewLoader(cfg *LoaderConfig) (*Loader, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid loader config")
	}
	return &Loader{dir: cfg.Dir, compile: cfg.Compile, source: cfg.LootSource}, nil
}

// Dir is the root definitions directory
func (l *Loader) Dir() string {
	return l.dir
}

// LoadOutput is a loaded catalog plus every definition that was skipped
type LoadOutput struct {
	Catalog *Catalog
	Errors  []error
}

// Load reads every definition. Malformed files and definitions are reported
// in Errors and skipped; only an unreadable directory fails the load.
func (l *Loader) Load(_ context.Context) (*LoadOutput, error) {
	if _, err := os.Stat(l.dir); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeFailedPrecondition, "definitions directory is not readable")
	}

	out := &LoadOutput{Catalog: NewCatalog()}

	shapeFiles, err := l.files(ShapesDir)
	if err != nil {
		return nil, err
	}
	for _, file := range shapeFiles {
		l.loadShapes(file, out)
	}

	lootFiles, err := l.files(LootDir)
	if err != nil {
		return nil, err
	}
	for _, file := range lootFiles {
		l.loadTables(file, out)
	}

	templateFiles, err := l.files(TemplatesDir)
	if err != nil {
		return nil, err
	}
	for _, file := range templateFiles {
		l.loadTemplates(file, out)
	}

	for _, t := range out.Catalog.Templates {
		if t.LootTableID != "" {
			if _, ok := out.Catalog.LootTables[t.LootTableID]; !ok {
				slog.Warn("template references unknown loot table",
					"template", t.ID,
					"loot_table", t.LootTableID)
			}
		}
		if t.ParticleShape != "" {
			if _, ok := out.Catalog.Shapes[t.ParticleShape]; !ok {
				slog.Warn("template references unknown particle shape",
					"template", t.ID,
					"shape", t.ParticleShape)
			}
		}
	}

	for _, e := range out.Errors {
		slog.Warn("skipped definition", "error", e)
	}
	slog.Info("definitions loaded",
		"dir", l.dir,
		"templates", len(out.Catalog.Templates),
		"loot_tables", len(out.Catalog.LootTables),
		"shapes", len(out.Catalog.Shapes),
		"skipped", len(out.Errors))

	return out, nil
}

func (l *Loader) files(sub string) ([]string, error) {
	dir := filepath.Join(l.dir, sub)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsDefinitionFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) loadShapes(file string, out *LoadOutput) {
	var doc shapesFile
	if !readFile(file, &doc, out) {
		return
	}
	for _, node := range doc.Shapes {
		var spec particles.ShapeSpec
		if err := node.Decode(&spec); err != nil {
			out.Errors = append(out.Errors, errors.ParseError(file, fragment(&node), err))
			continue
		}
		if _, dup := out.Catalog.Shapes[spec.ID]; dup {
			out.Errors = append(out.Errors, errors.ParseError(file, spec.ID, errors.AlreadyExistsf("shape %s already defined", spec.ID)))
			continue
		}
		shape, err := particles.Compile(l.compile, spec)
		if err != nil {
			out.Errors = append(out.Errors, errors.ParseError(file, spec.ID, err))
			continue
		}
		out.Catalog.Shapes[shape.ID] = shape
	}
}

func (l *Loader) loadTables(file string, out *LoadOutput) {
	var doc tablesFile
	if !readFile(file, &doc, out) {
		return
	}
	for _, node := range doc.Tables {
		var spec loot.TableSpec
		if err := node.Decode(&spec); err != nil {
			out.Errors = append(out.Errors, errors.ParseError(file, fragment(&node), err))
			continue
		}
		if _, dup := out.Catalog.LootTables[spec.ID]; dup {
			out.Errors = append(out.Errors, errors.ParseError(file, spec.ID, errors.AlreadyExistsf("loot table %s already defined", spec.ID)))
			continue
		}
		table, err := loot.Build(spec, l.source)
		if err != nil {
			out.Errors = append(out.Errors, errors.ParseError(file, spec.ID, err))
			continue
		}
		out.Catalog.LootTables[table.ID] = table
	}
}

func (l *Loader) loadTemplates(file string, out *LoadOutput) {
	var doc templatesFile
	if !readFile(file, &doc, out) {
		return
	}
	for _, node := range doc.Templates {
		var t entities.Template
		if err := node.Decode(&t); err != nil {
			out.Errors = append(out.Errors, errors.ParseError(file, fragment(&node), err))
			continue
		}
		if t.ID == "" {
			out.Errors = append(out.Errors, errors.ParseError(file, fragment(&node), errors.InvalidArgument("template id is required")))
			continue
		}
		out.Catalog.Templates = append(out.Catalog.Templates, &t)
	}
}

func readFile(file string, doc interface{}, out *LoadOutput) bool {
	data, err := os.ReadFile(file)
	if err != nil {
		out.Errors = append(out.Errors, errors.ParseError(file, "", err))
		return false
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		out.Errors = append(out.Errors, errors.ParseError(file, "", err))
		return false
	}
	return true
}

// fragment renders the first line of a node for error reports
func fragment(node *yaml.Node) string {
	data, err := yaml.Marshal(node)
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	return line
}

// IsDefinitionFile reports whether path has a YAML extension
func IsDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
