package api

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse acknowledges a request with no other result.
type OKResponse struct {
	OK bool `json:"ok"`
}

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Password string `json:"password"`
}

// VerifySessionResponse is returned from GET /verify-session.
type VerifySessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// CSRFResponse is returned from GET /cms/csrf.
type CSRFResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// WriteFileRequest is the JSON body for POST /cms/write-file.
type WriteFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Message string `json:"message,omitempty"`
}

// WriteFileResponse is returned from POST /cms/write-file.
type WriteFileResponse struct {
	OK         bool   `json:"ok"`
	Path       string `json:"path"`
	Message    string `json:"message"`
	Created    bool   `json:"created"`
	LiveURL    string `json:"liveUrl,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	Deployment string `json:"deployment"`
}

// DeleteFileRequest is the JSON body for POST /cms/delete-file.
type DeleteFileRequest struct {
	Path string `json:"path"`
}

// UploadImageRequest is the JSON body for POST /cms/upload-image.
type UploadImageRequest struct {
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType"`
	DataBase64 string `json:"dataBase64"`
	Folder     string `json:"folder"`
}

// UploadImageResponse is returned from POST /cms/upload-image.
type UploadImageResponse struct {
	OK        bool   `json:"ok"`
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl"`
	Message   string `json:"message"`
}

// ContactRequest is the JSON body for POST /contact.
type ContactRequest struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}
