package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/mapleleafu/santaflap/santaflap-backend/models"
	"github.com/mapleleafu/santaflap/santaflap-backend/responses"
)

// StatusCodeHeader carries the RPC code name of an error response.
const StatusCodeHeader = "X-Status-Code"

func HandleSuccess(w http.ResponseWriter, response models.ApiResponse) {
	writeJSON(w, http.StatusOK, response)
}

// HandleResult writes a submitAction result.
func HandleResult(w http.ResponseWriter, result *models.Result) {
	writeJSON(w, http.StatusOK, result)
}

// HandleError checks the error type and sends an appropriate response
func HandleError(w http.ResponseWriter, err error) {
	statusCode, code, errorMsg := classify(err)
	w.Header().Set(StatusCodeHeader, code.String())
	writeJSON(w, statusCode, models.Result{Success: false, Error: errorMsg})
}

func classify(err error) (int, codes.Code, string) {
	if apiErr, ok := err.(responses.APIError); ok {
		return apiErr.StatusCode(), apiErr.Code(), apiErr.Error()
	}
	// Default to internal server error if not a custom API error
	log.Printf("Unclassified error: %v", err)
	return http.StatusInternalServerError, codes.Internal, "Internal Server Error"
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
