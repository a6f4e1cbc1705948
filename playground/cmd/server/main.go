package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const PORT = 3000

// Canned replies for endpoints whose answer the adapters inspect, keyed by
// method and path.
var replies = map[string]string{
	"POST /debug/collect":                           `{"hitParsingResult":[{"valid":true,"parserMessage":[]}]}`,
	"POST /engage":                                  `1`,
	"GET /api/v1/stats/breakdown":                   `{"results":[]}`,
	"GET /api/v1/playground/members/find":           `{"data":{"id":"m-1","type":"member"}}`,
	"GET /api/v1/playground/members/m-1/activities": `{"data":[{"attributes":{"activity_type_key":"signup"}}]}`,
	"GET /api/3/contacts":                           `{"contacts":[]}`,
	"GET /api/3/accounts":                           `{"accounts":[]}`,
	"GET /api/3/accountContacts":                    `{"accountContacts":[]}`,
}

func main() {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Printf("❌ Failed to read body")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		log.Printf("📥 %s %s", r.Method, r.URL.RequestURI())
		for _, name := range []string{"Authorization", "Api-Token", "User-Agent", "X-Forwarded-For"} {
			if v := r.Header.Get(name); v != "" {
				log.Printf("   %s: %s", name, v)
			}
		}
		log.Printf("📊 Received:\n%s", render(r.Header.Get("Content-Type"), body))

		if r.URL.Query().Get("fail") == "1" {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Simulated server error"})
			return
		}

		if reply, ok := replies[r.Method+" "+r.URL.Path]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(reply))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	log.Printf("🚀 Echo collector running at http://localhost:%d", PORT)
	log.Printf("📍 Point backend endpoints at it, see playground/analytics.yaml")
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", PORT), nil))
}

func render(contentType string, body []byte) string {
	if len(body) == 0 {
		return "  (empty)"
	}

	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(string(body))
		if err == nil {
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			var b strings.Builder
			for _, k := range keys {
				fmt.Fprintf(&b, "  %s = %s\n", k, values.Get(k))
			}
			return b.String()
		}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		pretty, _ := json.MarshalIndent(decoded, "  ", "  ")
		return "  " + string(pretty)
	}
	return "  " + string(body)
}
