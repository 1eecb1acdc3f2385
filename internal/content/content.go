// Package content holds the static records the pages display: profile,
// experience, skills, projects and contact methods.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed content.toml
var defaultDocument []byte

// Experience tabs, in display order.
const (
	TabWork           = "work"
	TabEducation      = "education"
	TabCertifications = "certifications"
)

// Tabs lists the experience tabs in display order.
var Tabs = []string{TabWork, TabEducation, TabCertifications}

type Profile struct {
	Name     string `toml:"name"`
	Initials string `toml:"initials"`
	Title    string `toml:"title"`
	Location string `toml:"location"`
	Bio      string `toml:"bio"`
	Resume   string `toml:"resume"`
	Email    string `toml:"email"`
	LinkedIn string `toml:"linkedin"`
	GitHub   string `toml:"github"`
}

type Experience struct {
	Tab         string   `toml:"tab"`
	Role        string   `toml:"role"`
	Company     string   `toml:"company"`
	Date        string   `toml:"date"`
	Location    string   `toml:"location"`
	Description []string `toml:"description"`
	Skills      []string `toml:"skills"`
	Link        string   `toml:"link"`
}

type Skill struct {
	Name        string `toml:"name"`
	Color       string `toml:"color"`
	Description string `toml:"description"`
}

type SkillCategory struct {
	Category string  `toml:"category"`
	Items    []Skill `toml:"items"`
}

type Project struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	GitHub      string   `toml:"github"`
	Website     string   `toml:"website"`
	Tech        []string `toml:"tech"`
	Featured    bool     `toml:"featured"`
}

type ContactMethod struct {
	Title   string `toml:"title"`
	Content string `toml:"content"`
	Href    string `toml:"href"`
	Icon    string `toml:"icon"`
}

// Site is one parsed content document.
type Site struct {
	Profile    Profile         `toml:"profile"`
	Experience []Experience    `toml:"experience"`
	Skills     []SkillCategory `toml:"skills"`
	Projects   []Project       `toml:"projects"`
	Contact    []ContactMethod `toml:"contact"`
}

// Parse decodes and validates a TOML content document.
func Parse(data []byte) (*Site, error) {
	var s Site
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown content keys: %s", strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the embedded content document.
func Default() *Site {
	s, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("content: embedded document: %v", err))
	}
	return s
}

// Validate checks the invariants pages rely on.
func (s *Site) Validate() error {
	var errs []error
	if s.Profile.Name == "" {
		errs = append(errs, errors.New("profile.name is required"))
	}
	for i, e := range s.Experience {
		if !validTab(e.Tab) {
			errs = append(errs, fmt.Errorf("experience[%d]: unknown tab %q", i, e.Tab))
		}
		if e.Role == "" {
			errs = append(errs, fmt.Errorf("experience[%d]: role is required", i))
		}
	}
	seen := make(map[string]bool)
	for _, c := range s.Skills {
		for _, sk := range c.Items {
			key := strings.ToLower(sk.Name)
			if seen[key] {
				errs = append(errs, fmt.Errorf("skill %q listed twice", sk.Name))
			}
			seen[key] = true
		}
	}
	for i, p := range s.Projects {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("projects[%d]: name is required", i))
		}
	}
	return errors.Join(errs...)
}

// NormalizeTab maps unknown or empty tab names to TabWork.
func NormalizeTab(tab string) string {
	tab = strings.ToLower(strings.TrimSpace(tab))
	if validTab(tab) {
		return tab
	}
	return TabWork
}

// ExperienceFor returns the entries shown under tab.
func (s *Site) ExperienceFor(tab string) []Experience {
	tab = NormalizeTab(tab)
	var out []Experience
	for _, e := range s.Experience {
		if e.Tab == tab {
			out = append(out, e)
		}
	}
	return out
}

// Skill finds a skill by name, ignoring case.
func (s *Site) Skill(name string) (Skill, bool) {
	for _, c := range s.Skills {
		for _, sk := range c.Items {
			if strings.EqualFold(sk.Name, name) {
				return sk, true
			}
		}
	}
	return Skill{}, false
}

// Featured returns the projects shown on the home page.
func (s *Site) Featured() []Project {
	var out []Project
	for _, p := range s.Projects {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

func validTab(tab string) bool {
	for _, t := range Tabs {
		if t == tab {
			return true
		}
	}
	return false
}
