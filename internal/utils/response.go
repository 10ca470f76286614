package utils

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// JSONError writes the uniform {"error","code"} body.
func JSONError(w http.ResponseWriter, statusCode int, code, message string) {
	JSON(w, statusCode, map[string]string{
		"error": message,
		"code":  code,
	})
}
