package domain

// SearchKind identifies one of the bundled LIS searches.
type SearchKind string

// Available search kinds.
const (
	// SearchKindGenes searches annotated genes.
	SearchKindGenes SearchKind = "genes"

	// SearchKindTraits searches trait names from QTL and GWAS studies.
	SearchKindTraits SearchKind = "traits"
)

// SearchKinds lists every supported kind in display order.
func SearchKinds() []SearchKind {
	return []SearchKind{SearchKindGenes, SearchKindTraits}
}

// IsValid returns true if the kind is recognised.
func (k SearchKind) IsValid() bool {
	switch k {
	case SearchKindGenes, SearchKindTraits:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SearchKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k SearchKind) Description() string {
	switch k {
	case SearchKindGenes:
		return "Gene search"
	case SearchKindTraits:
		return "Trait search"
	default:
		return unknownDescription
	}
}

// FormFields returns the form fields a search of this kind accepts.
func (k SearchKind) FormFields() []string {
	switch k {
	case SearchKindGenes:
		return []string{"genus", "species", "strain", "identifier", "name", "description", "family"}
	case SearchKindTraits:
		return []string{"genus", "species", "name"}
	default:
		return nil
	}
}

// Location is a feature's position on a chromosome or supercontig.
type Location struct {
	Chromosome string `json:"chromosome"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Strand     string `json:"strand,omitempty"`
}

// Gene is an annotated gene returned by the gene search.
type Gene struct {
	Identifier  string     `json:"identifier"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Genus       string     `json:"genus"`
	Species     string     `json:"species"`
	Strain      string     `json:"strain"`
	GeneFamily  string     `json:"geneFamily,omitempty"`
	Locations   []Location `json:"locations,omitempty"`
}

// Trait is a measured trait returned by the trait search.
type Trait struct {
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Genus       string `json:"genus"`
	Species     string `json:"species"`
	StudyType   string `json:"studyType,omitempty"`
	StudyName   string `json:"studyName,omitempty"`
}
