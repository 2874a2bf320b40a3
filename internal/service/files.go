package service

import "context"

const deleteFileMutation = `mutation ($path: String!) {
  deleteFile(path: $path)
}`

// Files manages files stored by the backend.
type Files struct {
	api API
}

// NewFiles creates the file service.
func NewFiles(d Deps) *Files {
	return &Files{api: d.API}
}

// Delete removes a stored file by its storage path.
func (s *Files) Delete(ctx context.Context, path string) (bool, error) {
	return query[bool](ctx, s.api, "deleteFile", deleteFileMutation, map[string]any{"path": path})
}
