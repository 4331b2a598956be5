package rag

import (
	"fmt"
	"strings"
	"text/template"
)

// ProductSupportPrompt instructs the model to answer from retrieved product records
const ProductSupportPrompt = `
You are a helpful customer support chatbot for a product database. Your task is to provide detailed and relevant information about the product in a clear and user-friendly paragraph format. When responding, ensure to only include the most relevant details and exclude unnecessary information, such as SKU, Barcode, and customer highlights unless specifically asked.

The user’s question is: "{{.Question}}"

The relevant product information retrieved is:
{{.Context}}

Please respond in a well-structured paragraph, focusing on the following details:
- **Price**: If the user asks about pricing.
- **Discount**: If the user asks for any offers or discounts.
- **Rating**: If the user asks about reviews or ratings.
- **Stock Availability**: If the user asks whether the product is in stock or not.
- **Shipping Information**: If the user asks about the shipping process.
- **Warranty**: If the user asks about the warranty.
- If the user asks for other specific details, focus only on those aspects.

Do not include the SKU, Barcode, or customer highlights unless explicitly requested by the user. Ensure that the response is concise, clear, and focused on the user’s query.

Answer:
`

// documentSeparator joins retrieved documents in the rendered context
const documentSeparator = "\n\n"

// Prompt is a parsed template with Question and Context placeholders
type Prompt struct {
	tmpl *template.Template
}

type promptData struct {
	Question string
	Context  string
}

// NewPrompt parses text, which may reference {{.Question}} and {{.Context}}
func NewPrompt(text string) (*Prompt, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

// Render substitutes the question and the concatenated documents
func (p *Prompt) Render(question string, docs []Document) (string, error) {
	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}

	var sb strings.Builder
	err := p.tmpl.Execute(&sb, promptData{
		Question: question,
		Context:  strings.Join(contents, documentSeparator),
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return sb.String(), nil
}
