package dashboard

import (
	"encoding/json"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/apiclient"
)

// decodeOne accepts a bare object or one wrapped in {key: ...} or {data: ...}.
func decodeOne[T any](raw json.RawMessage, key string) (T, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err == nil {
		for _, k := range []string{key, "data"} {
			if inner, ok := env[k]; ok && len(inner) > 0 && inner[0] == '{' {
				return apiclient.Decode[T](inner)
			}
		}
	}
	return apiclient.Decode[T](raw)
}
