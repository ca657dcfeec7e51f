package reasoner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/c360/semreason/errors"
	"github.com/c360/semreason/vocabulary"
)

// Profile is a declarative reasoning configuration: which rules run, over
// which predicates, under which engine options. Profiles load from YAML
// files or come from the built-in set (ResolveProfile).
//
// Rule order in the built chain is fixed regardless of profile content:
// transitivity, symmetric, subclass, subproperty, inverse, jurisdiction
// inheritance, temporal, cross-jurisdiction. Profiles select and
// parameterize rules; they never reorder them, so output stays comparable
// across configurations.
type Profile struct {
	// Name identifies the profile in logs and diagnostics.
	Name string `yaml:"name"`

	// MaxIterations bounds reasoning rounds. Zero or omitted means
	// DefaultMaxIterations.
	MaxIterations int `yaml:"max_iterations"`

	// Permissive switches rule failures from fail-fast to skip-and-collect.
	Permissive bool `yaml:"permissive"`

	// Parallel runs each round's rules concurrently.
	Parallel bool `yaml:"parallel"`

	// Rules parameterizes the rule chain.
	Rules RuleProfiles `yaml:"rules"`
}

// RuleProfiles holds the per-rule sections of a profile.
type RuleProfiles struct {
	Transitivity            TransitivityProfile `yaml:"transitivity"`
	Symmetric               SymmetricProfile    `yaml:"symmetric"`
	SubClass                RuleToggle          `yaml:"subclass"`
	SubProperty             RuleToggle          `yaml:"subproperty"`
	Inverse                 InverseProfile      `yaml:"inverse"`
	JurisdictionInheritance JurisdictionProfile `yaml:"jurisdiction_inheritance"`
	Temporal                RuleToggle          `yaml:"temporal"`
	CrossJurisdiction       RuleToggle          `yaml:"cross_jurisdiction"`
}

// RuleToggle disables a rule. The zero value keeps the rule enabled, so
// omitted profile sections run the full chain.
type RuleToggle struct {
	Disabled bool `yaml:"disabled"`
}

// TransitivityProfile configures the transitive predicate set.
type TransitivityProfile struct {
	RuleToggle `yaml:",inline"`
	Predicates []string `yaml:"predicates"`
}

// SymmetricProfile configures the symmetric predicate set.
type SymmetricProfile struct {
	RuleToggle `yaml:",inline"`
	Predicates []string `yaml:"predicates"`
}

// InverseProfile configures inverse predicate declarations. Pairs may be
// one-sided; the rule derives the reverse direction.
type InverseProfile struct {
	RuleToggle   `yaml:",inline"`
	Declarations map[string]string `yaml:"declarations"`
}

// JurisdictionProfile configures jurisdiction inheritance.
type JurisdictionProfile struct {
	RuleToggle            `yaml:",inline"`
	ReferencePredicates   []string `yaml:"reference_predicates"`
	JurisdictionPredicate string   `yaml:"jurisdiction_predicate"`
}

// DefaultProfile builds the standard legal reasoning configuration. The
// structural W3C predicates are fixed; the domain predicate sets are
// discovered from the vocabulary registry, so registering a new vocabulary
// extends reasoning without touching the engine.
func DefaultProfile() *Profile {
	transitive := append([]string{
		vocabulary.RdfsSubClassOf,
		vocabulary.RdfsSubPropertyOf,
		vocabulary.OwlSameAs,
	}, vocabulary.DiscoverTransitivePredicates()...)

	symmetric := append([]string{
		vocabulary.OwlSameAs,
	}, vocabulary.DiscoverSymmetricPredicates()...)

	return &Profile{
		Name:          "legal-default",
		MaxIterations: DefaultMaxIterations,
		Rules: RuleProfiles{
			Transitivity: TransitivityProfile{Predicates: dedupePreserving(transitive)},
			Symmetric:    SymmetricProfile{Predicates: dedupePreserving(symmetric)},
			Inverse:      InverseProfile{Declarations: vocabulary.DiscoverInversePredicates()},
			JurisdictionInheritance: JurisdictionProfile{
				ReferencePredicates:   []string{vocabulary.DcReferences},
				JurisdictionPredicate: vocabulary.EliJurisdiction,
			},
		},
	}
}

// StructuralProfile builds a W3C-only configuration: class and property
// hierarchies, sameAs, no domain rules. Useful for reasoning over imported
// ontologies where legal semantics do not apply.
func StructuralProfile() *Profile {
	structural := []string{
		vocabulary.RdfsSubClassOf,
		vocabulary.RdfsSubPropertyOf,
		vocabulary.OwlSameAs,
	}
	return &Profile{
		Name:          "structural",
		MaxIterations: DefaultMaxIterations,
		Rules: RuleProfiles{
			Transitivity:            TransitivityProfile{Predicates: structural},
			Symmetric:               SymmetricProfile{Predicates: []string{vocabulary.OwlSameAs}},
			Inverse:                 InverseProfile{},
			JurisdictionInheritance: JurisdictionProfile{RuleToggle: RuleToggle{Disabled: true}},
			Temporal:                RuleToggle{Disabled: true},
			CrossJurisdiction:       RuleToggle{Disabled: true},
		},
	}
}

// ResolveProfile maps a profile reference to a Profile: a built-in name
// ("default", "legal-default", "structural", or empty for the default), or
// a path to a YAML profile file. Unknown references return
// errors.ErrUnknownProfile.
func ResolveProfile(nameOrPath string) (*Profile, error) {
	switch nameOrPath {
	case "", "default", "legal-default":
		return DefaultProfile(), nil
	case "structural":
		return StructuralProfile(), nil
	}

	if _, err := os.Stat(nameOrPath); err != nil {
		return nil, fmt.Errorf("profile %q is neither a built-in nor a readable file: %w",
			nameOrPath, errors.ErrUnknownProfile)
	}
	return LoadProfile(nameOrPath)
}

// LoadProfile reads and parses a YAML profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	profile, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, nil
}

// ParseProfile parses YAML profile bytes and applies defaults.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if profile.MaxIterations == 0 {
		profile.MaxIterations = DefaultMaxIterations
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Validate checks the profile for structural problems.
func (p *Profile) Validate() error {
	if p.MaxIterations < 0 {
		return fmt.Errorf("profile %q: max_iterations cannot be negative: %w",
			p.Name, errors.ErrInvalidConfig)
	}
	return nil
}

// Build constructs an engine from the profile. Additional options are
// applied after the profile's own, so callers can override per instance.
func (p *Profile) Build(opts ...EngineOption) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var rules []Rule
	if !p.Rules.Transitivity.Disabled {
		rules = append(rules, NewTransitivityRule(p.Rules.Transitivity.Predicates))
	}
	if !p.Rules.Symmetric.Disabled {
		rules = append(rules, NewSymmetricPropertyRule(p.Rules.Symmetric.Predicates))
	}
	if !p.Rules.SubClass.Disabled {
		rules = append(rules, NewSubClassRule())
	}
	if !p.Rules.SubProperty.Disabled {
		rules = append(rules, NewSubPropertyRule())
	}
	if !p.Rules.Inverse.Disabled {
		rules = append(rules, NewInversePropertyRule(p.Rules.Inverse.Declarations))
	}
	if !p.Rules.JurisdictionInheritance.Disabled {
		rules = append(rules, NewJurisdictionInheritanceRule(
			p.Rules.JurisdictionInheritance.ReferencePredicates,
			p.Rules.JurisdictionInheritance.JurisdictionPredicate,
		))
	}
	if !p.Rules.Temporal.Disabled {
		rules = append(rules, NewTemporalReasoningRule())
	}
	if !p.Rules.CrossJurisdiction.Disabled {
		rules = append(rules, NewCrossJurisdictionRule())
	}

	engineOpts := []EngineOption{WithMaxIterations(p.MaxIterations)}
	if p.Permissive {
		engineOpts = append(engineOpts, WithPermissiveMode())
	}
	if p.Parallel {
		engineOpts = append(engineOpts, WithParallelRules())
	}
	engineOpts = append(engineOpts, opts...)

	return NewEngine(rules, engineOpts...), nil
}

// NewDefaultEngine builds an engine from DefaultProfile.
func NewDefaultEngine(opts ...EngineOption) (*Engine, error) {
	return DefaultProfile().Build(opts...)
}

// dedupePreserving drops duplicate entries while keeping first-appearance
// order, so profile predicate lists stay deterministic when structural and
// discovered sets overlap.
func dedupePreserving(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
