package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/architected-by-miguel/sitecms/content"
)

const deploymentNote = "The site rebuilds from the GitHub commit before public pages update."

// WriteFile handles POST /cms/write-file.
func (a *API) WriteFile(w http.ResponseWriter, r *http.Request) {
	var req WriteFileRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" || req.Content == "" || !content.WritablePath(path) {
		a.events.failure(EventInvalidRequest, r, "invalid payload",
			slog.Bool("path_present", path != ""), slog.Bool("content_present", req.Content != ""))
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if err := content.ValidateMarkdownDocument(path, req.Content); err != nil {
		a.events.failure(EventInvalidRequest, r, err.Error(), slog.String("path", path))
		mapError(w, err)
		return
	}
	if err := content.ValidatePage(path, []byte(req.Content)); err != nil {
		a.events.failure(EventInvalidRequest, r, err.Error(), slog.String("path", path))
		mapError(w, err)
		return
	}

	repo, err := a.content(r.Context())
	if err != nil {
		a.events.error(EventGitHubFailure, r, err, slog.String("path", path))
		mapError(w, err)
		return
	}
	message := content.CommitMessage(path, req.Message)
	created, err := repo.Write(r.Context(), path, []byte(req.Content), message)
	a.metrics.githubOp("write", err)
	if err != nil {
		a.events.error(EventGitHubFailure, r, err, slog.String("path", path))
		mapError(w, err)
		return
	}

	a.events.info(EventContentWritten, r,
		slog.String("path", path), slog.Bool("created", created), slog.String("message", message))
	urls := content.DeriveURLs(path)
	writeJSON(w, http.StatusOK, WriteFileResponse{
		OK:         true,
		Path:       path,
		Message:    message,
		Created:    created,
		LiveURL:    urls.LiveURL,
		PreviewURL: urls.PreviewURL,
		Deployment: deploymentNote,
	})
}

// DeleteFile handles POST /cms/delete-file. Only documents can be deleted.
func (a *API) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var req DeleteFileRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid path")
		return
	}
	path := strings.TrimSpace(req.Path)
	if !content.DeletablePath(path) {
		writeError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	repo, err := a.content(r.Context())
	if err != nil {
		a.events.error(EventGitHubFailure, r, err, slog.String("path", path))
		mapError(w, err)
		return
	}
	err = repo.Delete(r.Context(), path, content.DeleteMessage(path))
	a.metrics.githubOp("delete", err)
	if err != nil {
		a.events.error(EventGitHubFailure, r, err, slog.String("path", path))
		mapError(w, err)
		return
	}

	a.events.info(EventContentDeleted, r, slog.String("path", path))
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// UploadImage handles POST /cms/upload-image.
func (a *API) UploadImage(w http.ResponseWriter, r *http.Request) {
	var req UploadImageRequest
	if err := decodeJSON(w, r, maxUploadBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image payload.")
		return
	}
	ext, ok := content.ImageExtension(strings.TrimSpace(req.MimeType))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unsupported image format.")
		return
	}
	data := strings.TrimSpace(req.DataBase64)
	if !content.ValidBase64(data) {
		writeError(w, http.StatusBadRequest, "Invalid image payload.")
		return
	}

	folder := content.FolderSegment(req.Folder)
	name := content.ImageName(req.FileName)
	path := content.ImagePath(folder, name, ext, a.now())
	message := content.UploadMessage(folder, name)

	repo, err := a.content(r.Context())
	if err != nil {
		a.events.error(EventGitHubFailure, r, err, slog.String("path", path))
		mapError(w, err)
		return
	}
	_, err = repo.WriteBase64(r.Context(), path, data, message)
	a.metrics.githubOp("upload", err)
	if err != nil {
		a.events.error(EventGitHubFailure, r, err, slog.String("path", path))
		mapError(w, err)
		return
	}

	a.events.info(EventImageUploaded, r, slog.String("path", path), slog.Int("base64_length", len(data)))
	writeJSON(w, http.StatusOK, UploadImageResponse{
		OK:        true,
		Path:      path,
		PublicURL: content.PublicURL(path),
		Message:   message,
	})
}
