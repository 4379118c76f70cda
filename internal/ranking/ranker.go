// Package ranking picks the resume bullets that best fit a job description.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abhatt13/referral-outreach-app/internal/resume"
)

// BulletCount is the number of bullets every email template expects.
const BulletCount = 3

var (
	genericBullets = []string{
		"Strong analytical and problem-solving skills with attention to detail",
		"Proven ability to work effectively in team environments and deliver results",
		"Quick learner with passion for adopting new technologies and methodologies",
	}

	defaultBullets = []string{
		"Strong technical background with proven problem-solving abilities",
		"Experience delivering high-quality software solutions",
		"Passionate about learning new technologies and best practices",
	}

	languageNeedles  = []string{"python", "java", "javascript", "c++", "c#", "ruby", "go"}
	frameworkNeedles = []string{"react", "angular", "vue", "django", "flask", "spring", "node"}
	cloudNeedles     = []string{"aws", "azure", "gcp", "docker", "kubernetes", "cloud"}
)

// Ranker scores experience bullets by keyword overlap with a job description.
type Ranker struct {
	vocabulary Vocabulary
}

// New returns a Ranker over vocab, or over the default vocabulary when vocab is
// empty.
func New(vocab Vocabulary) *Ranker {
	if len(vocab) == 0 {
		vocab = DefaultVocabulary()
	}
	return &Ranker{vocabulary: vocab}
}

// JobKeywords lists the vocabulary keywords present in the job description.
func (r *Ranker) JobKeywords(jobDescription string) []string {
	return r.vocabulary.Find(jobDescription)
}

// Score counts the keywords that occur in bullet, case-insensitively.
func Score(bullet string, keywords []string) int {
	lower := strings.ToLower(bullet)
	score := 0
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			score++
		}
	}
	return score
}

// MatchToJob returns exactly three bullets, the experience entries that share the
// most keywords with the job description first. Ties keep resume order. Missing
// slots are filled with a skill summary and then generic bullets.
func (r *Ranker) MatchToJob(doc resume.ParsedDocument, jobDescription string) []string {
	if len(doc.Experience) == 0 {
		return DefaultBullets(doc.Skills)
	}

	keywords := r.JobKeywords(jobDescription)

	type scored struct {
		score  int
		bullet string
	}
	ranked := make([]scored, 0, len(doc.Experience))
	for _, exp := range doc.Experience {
		ranked = append(ranked, scored{score: Score(exp, keywords), bullet: exp})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	bullets := make([]string, 0, BulletCount)
	for _, s := range ranked {
		if len(bullets) == BulletCount {
			break
		}
		bullets = append(bullets, s.bullet)
	}

	if len(bullets) < BulletCount {
		if summary := skillSummary(doc.Skills); summary != "" {
			bullets = append(bullets, summary)
		}
	}

	for _, generic := range genericBullets {
		if len(bullets) >= BulletCount {
			break
		}
		if contains(bullets, generic) {
			continue
		}
		bullets = append(bullets, generic)
	}

	return bullets
}

// Rank picks the bullets for an email. Without a job description the first three
// experience bullets are used as-is, falling back to DefaultBullets when the
// resume has fewer than three.
func (r *Ranker) Rank(doc resume.ParsedDocument, jobDescription string) []string {
	if strings.TrimSpace(jobDescription) != "" {
		return r.MatchToJob(doc, jobDescription)
	}

	if len(doc.Experience) < BulletCount {
		return DefaultBullets(doc.Skills)
	}
	return append([]string(nil), doc.Experience[:BulletCount]...)
}

// DefaultBullets builds three bullets from skills alone, grouping them into
// languages, frameworks and cloud tooling.
func DefaultBullets(skills []string) []string {
	bullets := make([]string, 0, BulletCount)

	if langs := skillsMatching(skills, languageNeedles); len(langs) > 0 {
		bullets = append(bullets, "Proficient in "+strings.Join(head(langs, 3), ", "))
	}
	if frameworks := skillsMatching(skills, frameworkNeedles); len(frameworks) > 0 {
		bullets = append(bullets, "Experience with "+strings.Join(head(frameworks, 3), ", "))
	}
	if cloud := skillsMatching(skills, cloudNeedles); len(cloud) > 0 {
		bullets = append(bullets, "Skilled in cloud technologies including "+strings.Join(head(cloud, 2), ", "))
	}

	for len(bullets) < BulletCount {
		bullets = append(bullets, defaultBullets[len(bullets)])
	}

	return bullets
}

func skillSummary(skills []string) string {
	switch {
	case len(skills) >= 3:
		return fmt.Sprintf("Proficient in %s, %s, and %s", skills[0], skills[1], skills[2])
	case len(skills) == 2:
		return fmt.Sprintf("Proficient in %s and %s", skills[0], skills[1])
	case len(skills) == 1:
		return "Proficient in " + skills[0]
	}
	return ""
}

func skillsMatching(skills, needles []string) []string {
	matched := make([]string, 0)
	for _, s := range skills {
		lower := strings.ToLower(s)
		for _, n := range needles {
			if strings.Contains(lower, n) {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
