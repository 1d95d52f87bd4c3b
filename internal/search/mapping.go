package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for message documents.
//
// Content is analyzed with English stemming and keeps term vectors for
// highlighting. Ownership and filter fields use the keyword analyzer so
// subjects like "auth0|abc" match exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = en.AnalyzerName
	contentFieldMapping.Store = true
	contentFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	for _, field := range []string{"id", "user_sub", "chat_id", "role"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		fm.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, fm)
	}

	createdFieldMapping := bleve.NewNumericFieldMapping()
	createdFieldMapping.Store = true
	createdFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("created_at", createdFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
