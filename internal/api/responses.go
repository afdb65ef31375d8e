package api

// Error kinds exposed to clients. Stable strings: the frontend and admin
// tooling branch on them to decide between "fix your request" and "try again".
const (
	KindValidation   = "validation"
	KindPrecondition = "precondition"
	KindConflict     = "conflict"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindNotFound     = "not_found"
	KindInvariant    = "invariant"
	KindGateway      = "gateway"
	KindInternal     = "internal"
)

type ErrorResponse struct {
	Kind  string `json:"kind" example:"precondition"`
	Error string `json:"error" example:"tournament is full"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

func Error(kind, msg string) ErrorResponse {
	return ErrorResponse{Kind: kind, Error: msg}
}
