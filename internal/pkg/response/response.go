package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/futig/medwatch-backend/internal/entity"
)

// JSON writes data as a JSON document with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	// Headers are already sent, an encode failure can only truncate the body.
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes the status text together with a human readable message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, entity.ErrorResponse{Error: http.StatusText(status), Message: message})
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// Attachment serves content as a download named filename.
func Attachment(w http.ResponseWriter, contentType, filename string, content []byte) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(content)
	return err
}
