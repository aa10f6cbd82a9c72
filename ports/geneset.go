package ports

import "screenviz/domain/enrichment"

// GeneSetPort loads gene-set libraries by name
type GeneSetPort interface {
	Load(name string) (enrichment.Library, error)
}
