package ranking

import "strings"

// Vocabulary is the ordered list of technical keywords used to score bullets
// against a job description. Order decides the order of JobKeywords.
type Vocabulary []string

var defaultKeywords = []string{
	"Python", "Java", "JavaScript", "TypeScript", "React", "Node.js", "Angular", "Vue",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "SQL", "NoSQL", "MongoDB", "PostgreSQL",
	"Machine Learning", "AI", "Data Science", "Analytics", "Big Data", "Spark", "Hadoop",
	"DevOps", "CI/CD", "Agile", "Scrum", "REST", "GraphQL", "Microservices",
	"TensorFlow", "PyTorch", "Pandas", "NumPy", "Scikit-learn",
	"Git", "Jenkins", "Terraform", "Ansible", "ETL", "API", "Cloud",
	"Databricks", "PySpark", "Data Engineering", "Data Pipeline",
}

// DefaultVocabulary returns a copy of the built-in keyword list.
func DefaultVocabulary() Vocabulary {
	return append(Vocabulary(nil), defaultKeywords...)
}

// NewVocabulary builds a vocabulary from user supplied keywords, dropping blanks
// and case-insensitive duplicates. It falls back to the default list when nothing
// usable remains.
func NewVocabulary(keywords []string) Vocabulary {
	seen := make(map[string]struct{}, len(keywords))
	vocab := make(Vocabulary, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		vocab = append(vocab, k)
	}

	if len(vocab) == 0 {
		return DefaultVocabulary()
	}
	return vocab
}

// Find returns the keywords whose lowercase form occurs in text, in vocabulary
// order. Matching is plain substring containment, so "Java" also matches
// "JavaScript".
func (v Vocabulary) Find(text string) []string {
	found := make([]string, 0)
	lower := strings.ToLower(text)
	for _, k := range v {
		if strings.Contains(lower, strings.ToLower(k)) {
			found = append(found, k)
		}
	}
	return found
}
