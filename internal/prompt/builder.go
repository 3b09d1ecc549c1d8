package prompt

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"
)

const questionVar = "question"

// cypherTemplate describes the document graph. Keep node labels and relationships in sync with the database.
const cypherTemplate = `Task: Generate a valid Cypher query for Neo4j based on the user's question.

Instructions:
1. Provide only the Cypher query without any additional explanation or text.
2. Ensure the query uses valid Cypher syntax.
3. Use MATCH statements to define the relationships.
4. Use RETURN to extract meaningful results.
5. Assume that there are the following nodes with their respective properties:
{{.schema}}
6. Relationships:
{{.relationships}}

Question: {{.question}}

Cypher Query:
`

// Label is a node label and the properties it carries
type Label struct {
	Name       string
	Properties []string
}

// Schema is the fixed graph description embedded in every prompt
var Schema = []Label{
	{Name: "Department", Properties: []string{"contact", "email", "location", "name"}},
	{Name: "Admin", Properties: []string{"name", "contact", "email", "location", "description", "real_idx"}},
	{Name: "Target", Properties: []string{"type", "restriction", "requirement", "description", "real_idx"}},
	{Name: "Portal", Properties: []string{"name", "id", "url"}},
	{Name: "Event", Properties: []string{"type", "restriction", "requirement", "description", "real_idx"}},
	{Name: "Schedule", Properties: []string{"title", "start_date", "end_date", "real_idx"}},
	{Name: "ManageAt", Properties: []string{"type", "method", "location", "description", "real_idx"}},
}

// Relationships lists the patterns hanging off Document nodes
var Relationships = []string{
	"(:Document)-[:HAS_EVENT]->(:Event)",
	"(:Document)-[:MANAGE_AT]->(:Department)",
	"(:Document)-[:MANAGE_AT]->(:Portal)",
	"(:Document)-[:MANAGE_AT]->(:Admin)",
	"(:Document)-[:SCHEDULE]->(:Target)",
}

// Builder fills the question into the Cypher generation template
type Builder struct {
	tmpl prompts.PromptTemplate
}

func NewBuilder() (*Builder, error) {
	return newBuilder(cypherTemplate)
}

func newBuilder(text string) (*Builder, error) {
	if !strings.Contains(text, "{{."+questionVar+"}}") {
		return nil, fmt.Errorf("prompt: template has no %s placeholder", questionVar)
	}

	return &Builder{
		tmpl: prompts.PromptTemplate{
			Template:       text,
			InputVariables: []string{questionVar},
			TemplateFormat: prompts.TemplateFormatGoTemplate,
			PartialVariables: map[string]any{
				"schema":        describeLabels(Schema),
				"relationships": describeRelationships(Relationships),
			},
		},
	}, nil
}

// Build returns the full prompt for question
func (b *Builder) Build(question string) (string, error) {
	out, err := b.tmpl.Format(map[string]any{questionVar: question})
	if err != nil {
		return "", fmt.Errorf("prompt: format: %w", err)
	}
	return out, nil
}

func describeLabels(labels []Label) string {
	lines := make([]string, 0, len(labels))
	for _, l := range labels {
		quoted := make([]string, 0, len(l.Properties))
		for _, p := range l.Properties {
			quoted = append(quoted, "'"+p+"'")
		}
		lines = append(lines, fmt.Sprintf("   - '%s' node with properties %s.", l.Name, joinList(quoted)))
	}
	return strings.Join(lines, "\n")
}

func describeRelationships(rels []string) string {
	lines := make([]string, 0, len(rels))
	for _, r := range rels {
		lines = append(lines, "   - "+r)
	}
	return strings.Join(lines, "\n")
}

// joinList renders a, b, and c
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
