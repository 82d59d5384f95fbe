package httpdto

type PresignUploadRequest struct {
	FileName  string `json:"file_name" binding:"required"`
	MimeType  string `json:"mime_type" binding:"required"`
	SizeBytes int64  `json:"size_bytes" binding:"required,gt=0"`
}

type PresignUploadResponse struct {
	UploadURL string            `json:"upload_url"`
	FileURL   string            `json:"file_url,omitempty"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers,omitempty"`
}
