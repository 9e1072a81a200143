package client

import (
	"encoding/json"
	"net/http"
)

func decodeRequest(req *http.Request, v interface{}) error {
	defer func() {
		_ = req.Body.Close()
	}()

	return json.NewDecoder(req.Body).Decode(v)
}
