package services

import (
	"fmt"

	"github.com/ekaya-inc/ekaya-export/pkg/models"
)

// ExpandResourceGraph turns a project's resource index into per-type fetch
// worklists. Flow descriptors contribute their parentId (the flow family),
// every other descriptor its own _id. Descriptor order is kept, duplicates
// included. Settings descriptors are skipped: the project's settingsId is the
// one settings entry and is appended last.
func ExpandResourceGraph(project *models.Project) (*models.Worklist, error) {
	if project == nil {
		return nil, fmt.Errorf("project is required")
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	w := models.NewWorklist()
	for _, d := range project.Resources {
		if d.Type == models.ResourceSettings {
			continue
		}
		key := d.Key()
		if key.IsZero() {
			continue
		}
		w.Add(d.Type, key)
	}

	if !project.SettingsID.IsZero() {
		w.Add(models.ResourceSettings, project.SettingsID)
	}
	return w, nil
}
