package googledomain

// ErrorResponse representa a estrutura de erro da API do Google Ads
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Google Ads
type ErrorDetails struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// IsTokenExpired verifica se o erro é de credencial inválida ou expirada
func (e *ErrorResponse) IsTokenExpired() bool {
	return e.Error.Status == "UNAUTHENTICATED" || e.Error.Status == "PERMISSION_DENIED"
}

// IsRateLimited verifica se o erro é de limite de requisições
func (e *ErrorResponse) IsRateLimited() bool {
	return e.Error.Status == "RESOURCE_EXHAUSTED"
}

// IsTransient verifica se o erro é transitório do lado do Google
func (e *ErrorResponse) IsTransient() bool {
	switch e.Error.Status {
	case "UNAVAILABLE", "INTERNAL", "DEADLINE_EXCEEDED", "ABORTED":
		return true
	}
	return false
}
