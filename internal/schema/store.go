package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// File is the top-level structure of a flueprint schema YAML file.
//
// Example:
//
//	sections:
//	  - name: "Boiler"
//	    description: "Replacement boiler make, model and siting."
//	    order: 3
//	checklist:
//	  - id: "flush-system"
//	    group: "System health"
//	    section: "Radiators and pipework"
//	    label: "Power flush required"
type File struct {
	Sections  []CanonicalSection `yaml:"sections"`
	Checklist []ChecklistItem    `yaml:"checklist"`
}

// Store holds one immutable snapshot of the taxonomy. Construct via [NewStore],
// [Load] or [Default]; replace wholesale to apply schema edits.
type Store struct {
	sections  []CanonicalSection
	checklist []ChecklistItem
	byID      map[string]ChecklistItem
}

// NewStore validates and normalizes the given taxonomy and returns an
// immutable Store. Sections are sorted by declared order with
// [FuturePlansSection] re-pinned last; if it is missing entirely it is
// appended with a default description.
func NewStore(sections []CanonicalSection, checklist []ChecklistItem) (*Store, error) {
	if err := validate(sections, checklist); err != nil {
		return nil, err
	}

	ordered := make([]CanonicalSection, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	// Re-pin "Future plans" to the end regardless of declared order.
	for i, s := range ordered {
		if s.Name == FuturePlansSection {
			ordered = append(append(ordered[:i:i], ordered[i+1:]...), s)
			break
		}
	}
	if !hasSection(ordered, FuturePlansSection) {
		ordered = append(ordered, CanonicalSection{
			Name:        FuturePlansSection,
			Description: "Anything the customer is planning that affects system sizing or siting.",
			Order:       len(ordered) + 1,
		})
	}

	byID := make(map[string]ChecklistItem, len(checklist))
	for _, item := range checklist {
		byID[item.ID] = item
	}

	items := make([]ChecklistItem, len(checklist))
	copy(items, checklist)

	return &Store{sections: ordered, checklist: items, byID: byID}, nil
}

// Load reads a schema YAML file from disk and returns a validated [Store].
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: open %q: %w", path, err)
	}
	defer f.Close()

	s, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("schema: parse %q: %w", path, err)
	}
	return s, nil
}

// LoadFromReader decodes schema YAML from r and validates the result.
// Useful in tests where schemas are constructed from string literals.
func LoadFromReader(r io.Reader) (*Store, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown top-level keys to catch typos
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	return NewStore(file.Sections, file.Checklist)
}

// Sections returns the canonical sections in canonical order.
// The returned slice must not be modified.
func (s *Store) Sections() []CanonicalSection { return s.sections }

// SectionNames returns the canonical section names in canonical order.
func (s *Store) SectionNames() []string {
	names := make([]string, len(s.sections))
	for i, sec := range s.sections {
		names[i] = sec.Name
	}
	return names
}

// Checklist returns the checklist-item catalog in declaration order.
// The returned slice must not be modified.
func (s *Store) Checklist() []ChecklistItem { return s.checklist }

// Item looks up a checklist item by ID.
func (s *Store) Item(id string) (ChecklistItem, bool) {
	item, ok := s.byID[id]
	return item, ok
}

// Lookup builds a fresh resolver table for this store's sections. Rebuilding
// is O(number of sections) and cheap enough to do per request.
func (s *Store) Lookup() Lookup {
	return BuildLookup(s.sections)
}

// validate checks taxonomy coherence and returns a joined error listing every
// failure found.
func validate(sections []CanonicalSection, checklist []ChecklistItem) error {
	var errs []error

	if len(sections) == 0 {
		errs = append(errs, errors.New("schema: at least one section is required"))
	}

	seen := make(map[string]struct{}, len(sections))
	for i, sec := range sections {
		if sec.Name == "" {
			errs = append(errs, fmt.Errorf("schema: sections[%d]: name must not be empty", i))
			continue
		}
		if _, dup := seen[sec.Name]; dup {
			errs = append(errs, fmt.Errorf("schema: duplicate section name %q", sec.Name))
		}
		seen[sec.Name] = struct{}{}
	}

	itemIDs := make(map[string]struct{}, len(checklist))
	for i, item := range checklist {
		prefix := fmt.Sprintf("schema: checklist[%d]", i)
		if item.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id must not be empty", prefix))
		} else if _, dup := itemIDs[item.ID]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate item id %q", prefix, item.ID))
		} else {
			itemIDs[item.ID] = struct{}{}
		}
		if item.Section != "" && item.Section != FuturePlansSection {
			if _, ok := seen[item.Section]; !ok {
				errs = append(errs, fmt.Errorf("%s: section %q is not a canonical section", prefix, item.Section))
			}
		}
		for j, m := range item.Materials {
			if m.Qty < 1 {
				errs = append(errs, fmt.Errorf("%s: materials[%d]: qty must be at least 1", prefix, j))
			}
		}
	}

	return errors.Join(errs...)
}

func hasSection(sections []CanonicalSection, name string) bool {
	for _, s := range sections {
		if s.Name == name {
			return true
		}
	}
	return false
}
