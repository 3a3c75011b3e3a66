package checks

import (
	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/ontology"
	"github.com/dshills/railcheck/internal/scene"
)

// PreparedOntology is an ontology document validated and parsed once, ready
// to check any number of scenes.
type PreparedOntology struct {
	schema   []issue.Issue
	ontology *ontology.Ontology
	err      error
}

// PrepareOntology validates doc against the ontology schema and, when it is
// well-formed, parses it.
func PrepareOntology(doc ontology.Document) *PreparedOntology {
	p := &PreparedOntology{schema: ontology.ValidateDocument(doc)}
	if len(p.schema) == 0 {
		p.ontology, p.err = ontology.Parse(doc)
	}
	return p
}

// Check returns the document's schema issues if it has any. Otherwise it
// checks every annotation of s against the ontology. A document that passed
// the schema check but could not be parsed yields a configuration error.
func (p *PreparedOntology) Check(s *scene.Scene) ([]issue.Issue, error) {
	if len(p.schema) > 0 {
		return append([]issue.Issue(nil), p.schema...), nil
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.ontology.Check(s), nil
}

// OntologyConformance validates doc and checks s against it.
func OntologyConformance(s *scene.Scene, doc ontology.Document) ([]issue.Issue, error) {
	return PrepareOntology(doc).Check(s)
}
