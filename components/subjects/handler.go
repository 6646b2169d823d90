package subjects

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/goliatone/go-enrollment/pkg/model"
)

type response struct {
	Data []model.Option `json:"data"`
}

// ServeHTTP answers GET and HEAD with the matches for ?q=, capped by ?limit=.
func (ix *Index) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	data := options(ix.Search(query.Get("q"), limit))

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "private, max-age=300")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	_ = json.NewEncoder(w).Encode(response{Data: data})
}
