package composer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NoKnowledgeResponse is the final text when retrieval found nothing for
// the ticket's category.
const NoKnowledgeResponse = `I'm sorry, but I couldn't find specific information related to your query in our knowledge base.
Our team will look into this and get back to you as soon as possible.

Thank you for your patience.`

type templatesFile struct {
	Templates map[string]string `yaml:"templates"`
}

// LoadTemplates reads the static fallback templates, keyed by canonical
// category identifier.
func LoadTemplates(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	var tf templatesFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse templates yaml: %w", err)
	}
	return tf.Templates, nil
}
