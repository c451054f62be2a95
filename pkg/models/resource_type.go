package models

import "github.com/jinzhu/inflection"

// ResourceType is the type tag of a project resource descriptor.
type ResourceType string

const (
	ResourceFlow               ResourceType = "flow"
	ResourceLexicon            ResourceType = "lexicon"
	ResourcePlaybook           ResourceType = "playbook"
	ResourceEndpoint           ResourceType = "endpoint"
	ResourceForm               ResourceType = "form"
	ResourceNLPConnector       ResourceType = "nlpconnector"
	ResourceDatabaseConnection ResourceType = "databaseconnection"
	ResourceSecret             ResourceType = "secret"
	ResourceSettings           ResourceType = "settings"
)

// ResourceTypes lists every exportable type in canonical export order.
// Log output and snapshot test fixtures depend on this order.
var ResourceTypes = []ResourceType{
	ResourceFlow,
	ResourceLexicon,
	ResourcePlaybook,
	ResourceEndpoint,
	ResourceForm,
	ResourceNLPConnector,
	ResourceDatabaseConnection,
	ResourceSecret,
	ResourceSettings,
}

// backingNames holds the collections whose database name is not the collection name.
var backingNames = map[string]string{
	"databaseconnections": "database-connections",
	"nlpconnectors":       "nlp-connectors",
}

// Valid returns true if t is a member of the type enumeration.
func (t ResourceType) Valid() bool {
	for _, known := range ResourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Collection returns the plural name used as worklist key, collection name and
// snapshot folder, e.g. "lexicon" -> "lexicons". "settings" is already plural.
func (t ResourceType) Collection() string {
	return inflection.Plural(string(t))
}

// BackingName returns the source database name for the type, without any
// deployment prefix.
func (t ResourceType) BackingName() string {
	collection := t.Collection()
	if name, ok := backingNames[collection]; ok {
		return name
	}
	return collection
}
