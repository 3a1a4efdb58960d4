package apierror

// ErrorResponse is the JSON error body. RedirectURI is set when the PSU must be
// sent back to the TPP.
type ErrorResponse struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
	MessageCode string `json:"message_code,omitempty"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}
