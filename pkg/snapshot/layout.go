// Package snapshot writes exported documents to the on-disk snapshot layout:
//
//	<root>/organisations/<org>/projects/<projectId>/<projectId>.json
//	<root>/organisations/<org>/projects/<projectId>/<collection>/<resourceId>.json
package snapshot

import "path/filepath"

// Layout computes snapshot paths for one organisation.
type Layout struct {
	Root         string
	Organisation string
}

// OrganisationDir returns the directory holding all of the organisation's projects.
func (l Layout) OrganisationDir() string {
	return filepath.Join(l.Root, "organisations", l.Organisation, "projects")
}

// ProjectDir returns the directory owned by one project.
func (l Layout) ProjectDir(projectID string) string {
	return filepath.Join(l.OrganisationDir(), projectID)
}

// ProjectFile returns the path of the project root document.
func (l Layout) ProjectFile(projectID string) string {
	return filepath.Join(l.ProjectDir(projectID), projectID+".json")
}

// ResourceDir returns the directory for one resource collection of a project.
func (l Layout) ResourceDir(projectID, collection string) string {
	return filepath.Join(l.ProjectDir(projectID), collection)
}

// ResourceFile returns the path of one resource document.
func (l Layout) ResourceFile(projectID, collection, resourceID string) string {
	return filepath.Join(l.ResourceDir(projectID, collection), resourceID+".json")
}
