package response

import (
	"encoding/json"
	"net/http"

	"storefront-be/internal/apperror"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Object  any      `json:"object,omitempty"`
	Errors  []string `json:"errors"`
}

type Paginated struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Object     any      `json:"object"`
	PageNumber int      `json:"pageNumber"`
	PageSize   int      `json:"pageSize"`
	TotalSize  int      `json:"totalSize"`
	Errors     []string `json:"errors"`
}

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func Success(w http.ResponseWriter, status int, message string, object any) {
	JSON(w, status, Envelope{
		Success: true,
		Message: message,
		Object:  object,
	})
}

func Fail(w http.ResponseWriter, status int, message string, errs []string) {
	JSON(w, status, Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

func Page(w http.ResponseWriter, message string, items any, page, pageSize, total int) {
	JSON(w, http.StatusOK, Paginated{
		Success:    true,
		Message:    message,
		Object:     items,
		PageNumber: page,
		PageSize:   pageSize,
		TotalSize:  total,
	})
}

// Error writes err as a failure envelope. Errors without a kind are reported
// as internal and their text is never exposed.
func Error(w http.ResponseWriter, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		Fail(w, http.StatusInternalServerError, "Internal server error", []string{"Internal server error"})
		return
	}
	Fail(w, apperror.HTTPStatus(appErr.Kind), appErr.Message, appErr.Details)
}
