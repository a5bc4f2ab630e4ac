package passes

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// Definition fixes the declarative surface of one pipeline pass: its name,
// the field paths it owns, its prompt template and fallback, the ontologies
// it needs, and the two content functions that turn a record into a request
// and a reply into an update. Definitions hold no state; all caching lives on
// the Pass instance wrapping them.
type Definition interface {
	Name() string

	// OwnedFields lists the dotted paths this pass (and only this pass)
	// writes, in write order.
	OwnedFields() []string

	// PromptFile is the template filename looked up under the prompts dir.
	PromptFile() string

	RequiredOntologies() []string

	// FallbackSystemPrompt is used when the template file is absent.
	FallbackSystemPrompt() string

	// BuildUserPrompt renders the per-record request from the record's
	// current state. It must not mutate the record.
	BuildUserPrompt(rec Record) string

	// ParseReply converts raw model output into this pass's flat field-path
	// update. A reply with no recoverable object yields an empty update.
	ParseReply(text string) ParsedUpdate

	// ReplySchema is the strict structured-output schema for this pass's
	// reply shape, used when the runner requests schema-constrained output.
	ReplySchema() map[string]any
}

// Settings configures one Pass instance. Zero values fall back to the
// original pipeline defaults.
type Settings struct {
	PromptsDir    string
	OntologiesDir string
	Logger        *slog.Logger
}

// Pass binds a Definition to instance-scoped state: the lazily assembled
// system prompt and the loaded ontology set. Both are computed at most once
// per instance; build a new Pass to pick up changed files.
type Pass struct {
	def Definition
	cfg Settings
	log *slog.Logger

	promptOnce   sync.Once
	systemPrompt string

	ontOnce  sync.Once
	ontDocs  map[string]gjson.Result
	ontOrder []string
}

// New wraps a pass definition with fresh caches.
func New(def Definition, cfg Settings) *Pass {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Pass{
		def: def,
		cfg: cfg,
		log: log.With("pass", def.Name()),
	}
}

func (p *Pass) Name() string { return p.def.Name() }

func (p *Pass) OwnedFields() []string { return p.def.OwnedFields() }

func (p *Pass) BuildUserPrompt(rec Record) string { return p.def.BuildUserPrompt(rec) }

func (p *Pass) ParseReply(text string) ParsedUpdate { return p.def.ParseReply(text) }

func (p *Pass) ReplySchema() map[string]any { return p.def.ReplySchema() }

// AlreadySatisfied reports whether the record needs no work from this pass.
func (p *Pass) AlreadySatisfied(rec Record) bool {
	return rec.AlreadySatisfied(p.def.OwnedFields())
}

// Apply merges a parsed update into the record under this pass's ownership.
func (p *Pass) Apply(rec Record, upd ParsedUpdate) (Record, error) {
	return rec.ApplyUpdate(p.def.OwnedFields(), upd)
}

// Ontologies loads the pass's required ontology documents, once. Missing
// files are logged and skipped; the pass runs with whatever loaded.
func (p *Pass) Ontologies() map[string]gjson.Result {
	p.ontOnce.Do(func() {
		p.ontDocs = make(map[string]gjson.Result)
		for _, name := range p.def.RequiredOntologies() {
			doc, found, err := loadOntologyFile(p.cfg.OntologiesDir, name)
			if err != nil {
				p.log.Warn("ontology unreadable", "name", name, "error", err)
				continue
			}
			if !found {
				p.log.Warn("ontology not found", "name", name, "dir", p.cfg.OntologiesDir)
				continue
			}
			p.ontDocs[name] = doc
			p.ontOrder = append(p.ontOrder, name)
		}
	})
	return p.ontDocs
}

// SystemPrompt assembles the instruction string sent as the system message
// for every record this pass processes: the prompt template (or the
// definition's fallback) plus the rendered ontology section. Cached after the
// first call.
func (p *Pass) SystemPrompt() string {
	p.promptOnce.Do(func() {
		base := p.def.FallbackSystemPrompt()
		if p.cfg.PromptsDir != "" && p.def.PromptFile() != "" {
			path := filepath.Join(p.cfg.PromptsDir, p.def.PromptFile())
			if b, err := os.ReadFile(path); err == nil {
				base = string(b)
			} else if !os.IsNotExist(err) {
				p.log.Warn("prompt template unreadable, using fallback", "path", path, "error", err)
			}
		}

		p.Ontologies()
		section := renderOntologySection(p.ontOrder, p.ontDocs)
		if section == "" {
			p.systemPrompt = base
			return
		}
		p.systemPrompt = base + "\n\n" + section
	})
	return p.systemPrompt
}

// Definitions returns the four passes in pipeline order.
func Definitions() []Definition {
	return []Definition{Observer{}, Empathizer{}, Strategist{}, Critic{}}
}

// DefinitionByName resolves a pass by its CLI name.
func DefinitionByName(name string) (Definition, bool) {
	for _, def := range Definitions() {
		if def.Name() == strings.ToLower(strings.TrimSpace(name)) {
			return def, true
		}
	}
	return nil, false
}

// CheckFieldOwnership verifies that no two passes declare the same field
// path. Overlap would let a later pass mistake an earlier pass's write for
// its own completion signal, so it is rejected at startup.
func CheckFieldOwnership(defs []Definition) error {
	owners := make(map[string]string)
	for _, def := range defs {
		for _, path := range def.OwnedFields() {
			if prev, ok := owners[path]; ok {
				return fmt.Errorf("CheckFieldOwnership: %q owned by both %s and %s", path, prev, def.Name())
			}
			owners[path] = def.Name()
		}
	}
	return nil
}
