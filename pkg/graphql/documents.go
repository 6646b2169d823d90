package graphql

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed documents/*.graphql
var documentFS embed.FS

// OperationKind distinguishes queries from mutations.
type OperationKind string

const (
	KindQuery    OperationKind = "query"
	KindMutation OperationKind = "mutation"
)

// Operation names shipped with the module.
const (
	OpZipcodeDetails                    = "ZipcodeDetails"
	OpNearbyCaregiversCount             = "NearbyCaregiversCount"
	OpSeekerCreate                      = "SeekerCreate"
	OpProviderCreate                    = "ProviderCreate"
	OpProviderNameUpdate                = "ProviderNameUpdate"
	OpProviderPhoneUpdate               = "ProviderPhoneUpdate"
	OpCaregiverAttributesUpdate         = "CaregiverAttributesUpdate"
	OpProviderJobInterestUpdate         = "ProviderJobInterestUpdate"
	OpUniversalProviderAttributesUpdate = "UniversalProviderAttributesUpdate"
	OpSeekerJobCreate                   = "SeekerJobCreate"
)

// Document is a statically defined GraphQL operation.
type Document struct {
	Name  string
	Kind  OperationKind
	Field string
	Text  string
}

var (
	documentsOnce sync.Once
	documents     map[string]Document
	documentsErr  error
)

var catalog = []Document{
	{Name: OpZipcodeDetails, Kind: KindQuery, Field: "zipcodeDetails"},
	{Name: OpNearbyCaregiversCount, Kind: KindQuery, Field: "nearbyCaregiversCount"},
	{Name: OpSeekerCreate, Kind: KindMutation, Field: "seekerCreate"},
	{Name: OpProviderCreate, Kind: KindMutation, Field: "providerCreate"},
	{Name: OpProviderNameUpdate, Kind: KindMutation, Field: "providerNameUpdate"},
	{Name: OpProviderPhoneUpdate, Kind: KindMutation, Field: "providerPhoneUpdate"},
	{Name: OpCaregiverAttributesUpdate, Kind: KindMutation, Field: "caregiverAttributesUpdate"},
	{Name: OpProviderJobInterestUpdate, Kind: KindMutation, Field: "providerJobInterestUpdate"},
	{Name: OpUniversalProviderAttributesUpdate, Kind: KindMutation, Field: "universalProviderAttributesUpdate"},
	{Name: OpSeekerJobCreate, Kind: KindMutation, Field: "seekerJobCreate"},
}

func loadDocuments() (map[string]Document, error) {
	out := make(map[string]Document, len(catalog))
	for _, doc := range catalog {
		data, err := documentFS.ReadFile("documents/" + doc.Name + ".graphql")
		if err != nil {
			return nil, fmt.Errorf("graphql: read document %s: %w", doc.Name, err)
		}
		text := strings.TrimSpace(string(data))
		prefix := string(doc.Kind) + " " + doc.Name
		if !strings.HasPrefix(text, prefix) {
			return nil, fmt.Errorf("graphql: document %s must start with %q", doc.Name, prefix)
		}
		doc.Text = text
		out[doc.Name] = doc
	}
	return out, nil
}

// Lookup returns the document registered under name.
func Lookup(name string) (Document, error) {
	documentsOnce.Do(func() {
		documents, documentsErr = loadDocuments()
	})
	if documentsErr != nil {
		return Document{}, documentsErr
	}
	doc, ok := documents[name]
	if !ok {
		return Document{}, fmt.Errorf("graphql: unknown operation %q", name)
	}
	return doc, nil
}

// Names lists every registered operation name in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, doc := range catalog {
		names = append(names, doc.Name)
	}
	sort.Strings(names)
	return names
}
