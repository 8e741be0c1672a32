package analyzer

import (
	"strings"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

// documentContentMarker precedes the verbatim document text at the end of
// every prompt.
const documentContentMarker = "Document content:\n"

var specializations = map[models.DocumentType][]string{
	models.DocumentTypeAcademic: {
		"This is an academic paper. Pay particular attention to:",
		"- The research question, hypotheses and stated contributions",
		"- Methodology, datasets and experimental setup",
		"- Key findings and how they are supported by evidence",
		"- Limitations, threats to validity and suggested future work",
		"- Discipline-specific terminology that a student would need to look up",
	},
	models.DocumentTypeLegal: {
		"This is a legal contract. Pay particular attention to:",
		"- The parties involved and their roles",
		"- Obligations, rights and restrictions for each party",
		"- Deadlines, terms, renewal and termination conditions",
		"- Payment terms, penalties, liabilities and indemnities",
		"- Defined legal terms, stated in plain language",
	},
	models.DocumentTypeMarketing: {
		"This is a marketing report. Pay particular attention to:",
		"- Performance metrics and KPIs, including period-over-period changes",
		"- Market trends, competitive positioning and market share",
		"- Target audience and customer segments",
		"- Campaign results, channel performance and return on spend",
		"- Recommendations and planned next steps",
	},
}

const baseInstructions = `Analyze the following document and organize the information into these categories:

1. Summary: A concise overview of the main points
2. Key Terms: Important terminology with explanations
3. Main Concepts: Core ideas and their descriptions
4. Key Points: Bullet points of crucial information
5. Numerical Data: Significant statistics, dates or measurements, explained

For every numerical data entry include:
- The actual value
- The context it appears in
- Its significance or implications

Respond with a JSON object using exactly this structure:
{
  "summary": "string",
  "keyTerms": [{ "term": "string", "explanation": "string" }],
  "mainConcepts": [{ "title": "string", "description": "string" }],
  "keyPoints": ["string"],
  "numericalData": [{ "value": "string", "context": "string", "significance": "string" }]
}`

// BuildPrompt assembles the completion prompt for a document. The result is
// deterministic and always ends with text, unmodified.
func BuildPrompt(docType models.DocumentType, text string) string {
	var b strings.Builder

	if lines, ok := specializations[docType]; ok {
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString(baseInstructions)
	b.WriteString("\n\n")
	b.WriteString(documentContentMarker)
	b.WriteString(text)

	return b.String()
}
