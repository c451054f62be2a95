// Package models contains domain types for ekaya-export.
package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
)

// Project is the root aggregate of an export. The typed fields are the header
// the exporter works with; Document keeps the complete source document in
// stored field order so nothing is dropped when the project is written.
type Project struct {
	ID           ObjectRef            `bson:"_id"`
	Name         string               `bson:"name"`
	Organisation ObjectRef            `bson:"organisation"`
	Color        string               `bson:"color"`
	SettingsID   ObjectRef            `bson:"settingsId"`
	Resources    []ResourceDescriptor `bson:"resources"`

	Document bson.D `bson:"-"`
}

// ResourceDescriptor is a project's index entry for one resource.
type ResourceDescriptor struct {
	ID            ObjectRef     `bson:"_id"`
	ParentID      ObjectRef     `bson:"parentId"`
	Name          string        `bson:"name"`
	Type          ResourceType  `bson:"type"`
	Properties    bson.RawValue `bson:"properties"`
	CreatedAt     int64         `bson:"createdAt,truncate"`
	LastChanged   int64         `bson:"lastChanged,truncate"`
	CreatedBy     ObjectRef     `bson:"createdBy"`
	LastChangedBy ObjectRef     `bson:"lastChangedBy"`
}

// Key returns the identifier used to fetch the resource: the parent (flow
// family) for flows, the descriptor's own identifier for everything else.
func (d ResourceDescriptor) Key() ObjectRef {
	if d.Type == ResourceFlow {
		return d.ParentID
	}
	return d.ID
}

// DecodeProject decodes a raw project document into its typed header and
// ordered body.
func DecodeProject(raw bson.Raw) (*Project, error) {
	project := &Project{}
	if err := bson.Unmarshal(raw, project); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	if err := bson.Unmarshal(raw, &project.Document); err != nil {
		return nil, fmt.Errorf("failed to decode project document: %w", err)
	}
	return project, nil
}

// Validate checks that every descriptor carries a known resource type.
func (p *Project) Validate() error {
	for i, d := range p.Resources {
		if !d.Type.Valid() {
			return fmt.Errorf("resource %d (%s) of project %s has type %q: %w",
				i, d.ID, p.ID, d.Type, apperrors.ErrUnknownResourceType)
		}
	}
	return nil
}

// RootDocument returns a copy of the project document ready for the snapshot.
// When organisation is non-empty the organisation field is replaced with it, so
// the snapshot imports into the target organisation.
func (p *Project) RootDocument(organisation string) bson.D {
	doc := make(bson.D, len(p.Document))
	copy(doc, p.Document)
	if organisation == "" {
		return doc
	}
	for i := range doc {
		if doc[i].Key == "organisation" {
			doc[i].Value = organisation
			return doc
		}
	}
	return append(doc, bson.E{Key: "organisation", Value: organisation})
}

// FindProject returns the project whose identifier renders as id, or nil.
func FindProject(projects []*Project, id string) *Project {
	for _, p := range projects {
		if p != nil && p.ID.String() == id {
			return p
		}
	}
	return nil
}
