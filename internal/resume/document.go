// Package resume turns unstructured resume text into structured fields.
//
// Every extractor is a pure function over the input text. A field that cannot be
// matched confidently is returned as an empty string or an empty slice; nothing in
// this package returns an error or panics on malformed input.
package resume

// ParsedDocument holds the fields extracted from a single resume.
type ParsedDocument struct {
	Name       string   `json:"name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	LinkedIn   string   `json:"linkedin,omitempty"`
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Education  string   `json:"education,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	RawText    string   `json:"raw_text"`
}

// Parse runs every field extractor over text.
func Parse(text string) ParsedDocument {
	return ParsedDocument{
		Name:       ExtractName(text),
		Email:      ExtractEmail(text),
		Phone:      ExtractPhone(text),
		LinkedIn:   ExtractLinkedIn(text),
		Skills:     ExtractSkills(text),
		Experience: ExtractExperience(text),
		Education:  ExtractEducation(text),
		Summary:    ExtractSummary(text),
		RawText:    text,
	}
}

// Missing returns the names of the fields that could not be detected, so callers
// can ask the user to fill them in manually.
func (d ParsedDocument) Missing() []string {
	missing := make([]string, 0)
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.Email == "" {
		missing = append(missing, "email")
	}
	if d.Phone == "" {
		missing = append(missing, "phone")
	}
	if d.LinkedIn == "" {
		missing = append(missing, "linkedin")
	}
	if len(d.Skills) == 0 {
		missing = append(missing, "skills")
	}
	if len(d.Experience) == 0 {
		missing = append(missing, "experience")
	}
	if d.Education == "" {
		missing = append(missing, "education")
	}
	if d.Summary == "" {
		missing = append(missing, "summary")
	}
	return missing
}
