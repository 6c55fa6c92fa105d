package content

import (
	"encoding/json"
	"strings"
)

// Home is content/pages/home.json.
type Home struct {
	HeroHeadline     string   `json:"heroHeadline"`
	HeroSubheadline  string   `json:"heroSubheadline"`
	ProfileImage     *Image   `json:"profileImage,omitempty"`
	ProofMetrics     []Metric `json:"proofMetrics"`
	StrategicPillars []Pillar `json:"strategicPillars"`
	PrimaryCTA       *Link    `json:"primaryCTA"`
	SecondaryCTA     *Link    `json:"secondaryCTA"`
}

type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

type Metric struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Context string `json:"context"`
}

type Pillar struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Resume is content/pages/resume.json.
type Resume struct {
	Sections           []Role `json:"sections"`
	DownloadablePDFURL string `json:"downloadablePdfUrl"`
}

type Role struct {
	Role       string   `json:"role"`
	Company    string   `json:"company"`
	Timeline   string   `json:"timeline"`
	Highlights []string `json:"highlights"`
	Metrics    []string `json:"metrics"`
	Tags       []string `json:"tags"`
}

// Contact is content/pages/contact.json.
type Contact struct {
	Headline       string          `json:"headline"`
	Subtext        string          `json:"subtext"`
	ContactMethods []ContactMethod `json:"contactMethods"`
}

type ContactMethod struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// ValidatePage checks data against the schema of the page at path. Paths
// that are not page files pass unchecked.
func ValidatePage(path string, data []byte) error {
	switch path {
	case HomePage:
		var p Home
		if err := json.Unmarshal(data, &p); err != nil {
			return invalid("Invalid home content")
		}
		return p.Validate()
	case ResumePage:
		var p Resume
		if err := json.Unmarshal(data, &p); err != nil {
			return invalid("Invalid resume content")
		}
		return p.Validate()
	case ContactPage:
		var p Contact
		if err := json.Unmarshal(data, &p); err != nil {
			return invalid("Invalid contact content")
		}
		return p.Validate()
	}
	return nil
}

func (h *Home) Validate() error {
	if h.ProofMetrics == nil || h.StrategicPillars == nil {
		return invalid("Invalid home arrays")
	}
	if h.ProfileImage != nil && strings.TrimSpace(h.ProfileImage.Src) != "" && strings.TrimSpace(h.ProfileImage.Alt) == "" {
		return invalid("profileImage.alt is required when profileImage.src is set")
	}
	checks := []fieldCheck{
		{"heroHeadline", h.HeroHeadline},
		{"heroSubheadline", h.HeroSubheadline},
	}
	for _, m := range h.ProofMetrics {
		checks = append(checks,
			fieldCheck{"proofMetrics.value", m.Value},
			fieldCheck{"proofMetrics.label", m.Label},
			fieldCheck{"proofMetrics.context", m.Context})
	}
	for _, p := range h.StrategicPillars {
		if p.Bullets == nil {
			return invalid("Invalid strategicPillars.bullets")
		}
		checks = append(checks, fieldCheck{"strategicPillars.title", p.Title})
	}
	checks = append(checks, linkChecks("primaryCTA", h.PrimaryCTA)...)
	checks = append(checks, linkChecks("secondaryCTA", h.SecondaryCTA)...)
	return runChecks(checks)
}

func (r *Resume) Validate() error {
	if r.Sections == nil {
		return invalid("Invalid resume content")
	}
	var checks []fieldCheck
	for _, s := range r.Sections {
		switch {
		case s.Highlights == nil:
			return invalid("Invalid resume.highlights")
		case s.Metrics == nil:
			return invalid("Invalid resume.metrics")
		case s.Tags == nil:
			return invalid("Invalid resume.tags")
		}
		checks = append(checks,
			fieldCheck{"resume.role", s.Role},
			fieldCheck{"resume.company", s.Company},
			fieldCheck{"resume.timeline", s.Timeline})
	}
	checks = append(checks, fieldCheck{"downloadablePdfUrl", r.DownloadablePDFURL})
	return runChecks(checks)
}

func (c *Contact) Validate() error {
	if c.ContactMethods == nil {
		return invalid("Invalid contact content")
	}
	checks := []fieldCheck{
		{"headline", c.Headline},
		{"subtext", c.Subtext},
	}
	for _, m := range c.ContactMethods {
		checks = append(checks,
			fieldCheck{"contactMethods.type", m.Type},
			fieldCheck{"contactMethods.label", m.Label},
			fieldCheck{"contactMethods.value", m.Value})
	}
	return runChecks(checks)
}

type fieldCheck struct {
	field string
	value string
}

func linkChecks(name string, l *Link) []fieldCheck {
	if l == nil {
		l = &Link{}
	}
	return []fieldCheck{
		{name + ".label", l.Label},
		{name + ".href", l.Href},
	}
}

func runChecks(checks []fieldCheck) error {
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return invalid("Invalid %s", c.field)
		}
	}
	return nil
}
