package rt

import (
	"bytes"
	"encoding/json"

	"github.com/buger/jsonparser"
)

// JSONError is the result of JSONField for malformed input or a missing key.
const JSONError = "HATA"

// JSONField returns the key field of a JSON object text.
// The whole text must be valid JSON.
// Strings are unquoted, other values are returned as compact JSON text.
func JSONField(src, key string) string {
	data := []byte(src)

	if !json.Valid(data) {
		return JSONError
	}

	v, tp, _, err := jsonparser.Get(data, key)
	if err != nil {
		return JSONError
	}

	if tp == jsonparser.String {
		s, err := jsonparser.ParseString(v)
		if err != nil {
			return JSONError
		}

		return s
	}

	var b bytes.Buffer

	err = json.Compact(&b, v)
	if err != nil {
		return JSONError
	}

	return b.String()
}
