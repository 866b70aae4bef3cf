package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// writeJSON encodes payload before committing status, so an unencodable
// payload becomes a logged 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, payload interface{}) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			if logger != nil {
				logger.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
			}
			status = http.StatusInternalServerError
			body = []byte(`{"message":"internal error"}`)
		}
		body = append(body, '\n')
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_, _ = w.Write(body)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, nil, status, map[string]string{"message": message})
}

// decodeBody decodes a JSON body. An empty body leaves dst untouched.
func decodeBody(r *http.Request, w http.ResponseWriter, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
